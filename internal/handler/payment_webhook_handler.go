package handler

import (
	"errors"
	"io"
	"log"
	"net/http"

	"vendora/config"
	"vendora/internal/domain"
	"vendora/internal/repository"
	"vendora/internal/service"
	"vendora/pkg/gateway"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PaymentWebhookHandler struct {
	cfg      *config.Config
	payments *repository.PaymentRepository
	settle   *service.SettlementService
}

func NewPaymentWebhookHandler(cfg *config.Config, payments *repository.PaymentRepository, settle *service.SettlementService) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{cfg: cfg, payments: payments, settle: settle}
}

// Handle processes Paystack push events. The signature check fails closed
// whenever a secret is configured. Recognized-but-unsettleable cases are
// acknowledged with 200 so the gateway does not retry-storm; only an unknown
// payment is reported as 404.
// POST /api/v1/payment/webhook/paystack
func (h *PaymentWebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if h.cfg.Paystack.SecretKey != "" {
		sig := c.GetHeader("x-paystack-signature")
		if sig == "" || !gateway.ValidSignature(h.cfg.Paystack.SecretKey, body, sig) {
			log.Printf("[webhook] rejected: %v", domain.ErrInvalidSignature)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
			return
		}
	}

	ev, err := gateway.DecodeWebhook(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if ev.Data.Reference == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reference required"})
		return
	}

	p, err := h.payments.GetByReference(ev.Data.Reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
			return
		}
		log.Printf("[webhook] lookup ref=%s failed: %v", ev.Data.Reference, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}

	var status gateway.Status
	switch ev.Event {
	case domain.EventChargeSuccess:
		status = gateway.StatusSuccess
	case domain.EventChargeFailed:
		status = gateway.StatusFailed
	default:
		// Unrelated event type: acknowledge and ignore.
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	if _, _, err := h.settle.Apply(c.Request.Context(), p, status); err != nil {
		// Still acknowledge: transport succeeded, and the reconciler will
		// pick the record up if it is stuck pending.
		log.Printf("[webhook] settle ref=%s failed: %v", p.TransactionReference, err)
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
