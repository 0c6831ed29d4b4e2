package repository

import (
	"testing"

	"vendora/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.File{},
		&models.Favourite{},
		&models.Payment{},
		&models.Chat{},
		&models.Message{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name, email, role string) *models.User {
	t.Helper()
	u := &models.User{Name: name, Email: email, Role: role}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return u
}

func seedFile(t *testing.T, db *gorm.DB, title string, creatorID uint, priceCents int64) *models.File {
	t.Helper()
	cat := &models.Category{Name: "cat-" + title}
	if err := db.Create(cat).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	f := &models.File{
		Title:       title,
		PriceCents:  priceCents,
		URL:         "https://cdn.test/" + title,
		Status:      "published",
		IsAvailable: true,
		CreatorID:   creatorID,
		CategoryID:  cat.ID,
	}
	if err := db.Create(f).Error; err != nil {
		t.Fatalf("seed file %s: %v", title, err)
	}
	return f
}
