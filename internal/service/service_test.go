package service

import (
	"testing"

	"vendora/internal/domain"
	"vendora/internal/models"

	"github.com/stretchr/testify/require"
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

func seedUser(t *testing.T, db *gorm.DB, email, role string) *models.User {
	t.Helper()
	u := &models.User{Name: email, Email: email, Role: role}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedPublishedFile(t *testing.T, db *gorm.DB, title string, creatorID uint, priceCents int64) *models.File {
	t.Helper()
	cat := &models.Category{Name: "cat-" + title}
	require.NoError(t, db.Create(cat).Error)
	f := &models.File{
		Title:       title,
		PriceCents:  priceCents,
		URL:         "https://cdn.test/" + title,
		Status:      domain.FileStatusPublished,
		IsAvailable: true,
		CreatorID:   creatorID,
		CategoryID:  cat.ID,
	}
	require.NoError(t, db.Create(f).Error)
	return f
}
