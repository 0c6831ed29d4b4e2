package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"vendora/config"
	"vendora/internal/domain"
	"vendora/internal/middleware"
	"vendora/internal/repository"
	"vendora/internal/service"
	"vendora/pkg/gateway"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PaymentHandler struct {
	cfg      *config.Config
	purchase *service.PurchaseService
	settle   *service.SettlementService
	payments *repository.PaymentRepository
	users    *repository.UserRepository
	provider gateway.Provider
}

func NewPaymentHandler(
	cfg *config.Config,
	purchase *service.PurchaseService,
	settle *service.SettlementService,
	payments *repository.PaymentRepository,
	users *repository.UserRepository,
	provider gateway.Provider,
) *PaymentHandler {
	return &PaymentHandler{
		cfg:      cfg,
		purchase: purchase,
		settle:   settle,
		payments: payments,
		users:    users,
		provider: provider,
	}
}

// Purchase initiates (or resumes) payment for a file.
// POST /api/v1/purchase/:fileId
func (h *PaymentHandler) Purchase(c *gin.Context) {
	userID := middleware.GetUserID(c)
	fileID, err := strconv.ParseUint(c.Param("fileId"), 10, 64)
	if err != nil || fileID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file id"})
		return
	}
	buyer, err := h.users.GetByID(userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	intent, err := h.purchase.Initiate(c.Request.Context(), buyer, uint(fileID))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyPurchased):
			c.JSON(http.StatusBadRequest, gin.H{"error": "you have already purchased this file"})
		case errors.Is(err, domain.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		case errors.Is(err, domain.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "you cannot purchase your own file"})
		case errors.Is(err, domain.ErrGatewayUnavailable):
			log.Printf("[payment] initiate gateway error: %v", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "payment gateway unavailable, try again shortly"})
		default:
			log.Printf("[payment] initiate failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "purchase failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"authorization_url": intent.AuthorizationURL,
		"reference":         intent.Reference,
		"amount":            intent.AmountCents,
	})
}

// Verify handles the buyer's return from the gateway checkout page and
// redirects to the frontend result page. Repeat visits are safe: the
// settlement guard makes the underlying transition idempotent.
// GET /api/v1/payment/verify/:reference?reference=<gatewayRef>
func (h *PaymentHandler) Verify(c *gin.Context) {
	gatewayRef := c.Query("reference")
	pathRef := c.Param("reference")
	if gatewayRef == "" && pathRef == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing transaction reference"})
		return
	}

	// The gateway's own reference from the query is authoritative; the path
	// reference is our callback correlation key kept as fallback.
	lookupRef := gatewayRef
	if lookupRef == "" {
		lookupRef = pathRef
	}
	p, err := h.payments.GetByReference(lookupRef)
	if err != nil && gatewayRef != "" && pathRef != "" {
		p, err = h.payments.GetByReference(pathRef)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "payment lookup failed"})
		return
	}

	updated, _, err := h.settle.VerifyAndApply(c.Request.Context(), h.provider, p, gatewayRef)
	if err != nil {
		// Record stays pending; the reconciler retries later.
		log.Printf("[payment] verify ref=%s gateway error: %v", p.TransactionReference, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "verification unavailable, payment still processing"})
		return
	}

	ref := updated.TransactionReference
	if updated.Status == domain.PaymentSuccess {
		c.Redirect(http.StatusFound, h.cfg.Server.FrontendURL+"/payment-success?reference="+ref)
		return
	}
	c.Redirect(http.StatusFound, h.cfg.Server.FrontendURL+"/payment-failed?reference="+ref)
}
