package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"vendora/internal/domain"
	"vendora/internal/models"
	"vendora/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newEntitlementRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Payment{}))

	payments := repository.NewPaymentRepository(db)
	r := gin.New()
	// Stands in for AuthRequired in these tests.
	r.Use(func(c *gin.Context) {
		c.Set("user_id", uint(1))
	})
	r.GET("/files/download/:fileId", RequirePurchase(payments), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r, db
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequirePurchase(t *testing.T) {
	r, db := newEntitlementRouter(t)

	t.Run("denied without payment", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, get(r, "/files/download/7").Code)
	})

	t.Run("denied while pending", func(t *testing.T) {
		require.NoError(t, db.Create(&models.Payment{
			BuyerID: 1, FileID: 7, CreatorID: 2, AmountCents: 100,
			Status: domain.PaymentPending, TransactionReference: "vnd_p", IdempotencyKey: "kp",
		}).Error)
		assert.Equal(t, http.StatusForbidden, get(r, "/files/download/7").Code)
	})

	t.Run("allowed after success", func(t *testing.T) {
		require.NoError(t, db.Create(&models.Payment{
			BuyerID: 1, FileID: 8, CreatorID: 2, AmountCents: 100,
			Status: domain.PaymentSuccess, TransactionReference: "vnd_s", IdempotencyKey: "ks",
		}).Error)
		assert.Equal(t, http.StatusOK, get(r, "/files/download/8").Code)
	})

	t.Run("someone else's purchase does not count", func(t *testing.T) {
		require.NoError(t, db.Create(&models.Payment{
			BuyerID: 9, FileID: 11, CreatorID: 2, AmountCents: 100,
			Status: domain.PaymentSuccess, TransactionReference: "vnd_o", IdempotencyKey: "ko",
		}).Error)
		assert.Equal(t, http.StatusForbidden, get(r, "/files/download/11").Code)
	})

	t.Run("bad file id", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, get(r, "/files/download/abc").Code)
	})
}
