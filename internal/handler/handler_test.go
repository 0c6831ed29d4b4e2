package handler

import (
	"testing"

	"vendora/internal/domain"
	"vendora/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.File{},
		&models.Favourite{},
		&models.Payment{},
		&models.Chat{},
		&models.Message{},
	))
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
