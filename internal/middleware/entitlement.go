package middleware

import (
	"net/http"
	"strconv"

	"vendora/internal/repository"

	"github.com/gin-gonic/gin"
)

// RequirePurchase gates paid content: the request proceeds only when the
// authenticated user has a successful payment for :fileId. Lookup errors
// deny rather than fall through.
func RequirePurchase(payments *repository.PaymentRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := GetUserID(c)
		fileID, err := strconv.ParseUint(c.Param("fileId"), 10, 64)
		if err != nil || fileID == 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid file id"})
			return
		}
		ok, err := payments.HasSuccessfulPayment(userID, uint(fileID))
		if err != nil || !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "you must purchase this file to access it"})
			return
		}
		c.Next()
	}
}
