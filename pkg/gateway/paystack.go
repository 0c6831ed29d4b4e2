package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// PaystackProvider talks to the Paystack transaction API.
type PaystackProvider struct {
	BaseURL   string
	SecretKey string
	client    *http.Client
}

func NewPaystackProvider(baseURL, secretKey string) *PaystackProvider {
	if baseURL == "" {
		baseURL = "https://api.paystack.co"
	}
	return &PaystackProvider{
		BaseURL:   baseURL,
		SecretKey: secretKey,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

type paystackInitReq struct {
	Email       string `json:"email"`
	Amount      int64  `json:"amount"` // kobo / minor units
	CallbackURL string `json:"callback_url,omitempty"`
}

type paystackInitResp struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

func (p *PaystackProvider) Initialize(ctx context.Context, req InitializeRequest) (*InitializeResponse, error) {
	body, _ := json.Marshal(paystackInitReq{
		Email:       req.Email,
		Amount:      req.AmountCents,
		CallbackURL: req.CallbackURL,
	})
	apiReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	apiReq.Header.Set("Content-Type", "application/json")
	apiReq.Header.Set("Authorization", "Bearer "+p.SecretKey)
	if req.IdempotencyKey != "" {
		apiReq.Header.Set("Idempotency-Key", req.IdempotencyKey)
	}
	resp, err := p.client.Do(apiReq)
	if err != nil {
		return nil, fmt.Errorf("%w: initialize: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: initialize: status %d", ErrUnavailable, resp.StatusCode)
	}
	var out paystackInitResp
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("%w: initialize: decode: %v", ErrUnavailable, err)
	}
	if !out.Status || out.Data.AuthorizationURL == "" {
		return nil, fmt.Errorf("%w: initialize: %s", ErrUnavailable, out.Message)
	}
	log.Printf("[paystack] initialized ref=%s gateway_ref=%s", req.Reference, out.Data.Reference)
	return &InitializeResponse{
		AuthorizationURL: out.Data.AuthorizationURL,
		Reference:        out.Data.Reference,
	}, nil
}

type paystackVerifyResp struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status string `json:"status"`
		Amount int64  `json:"amount"`
	} `json:"data"`
}

func (p *PaystackProvider) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	apiReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseURL+"/transaction/verify/"+reference, nil)
	if err != nil {
		return nil, err
	}
	apiReq.Header.Set("Authorization", "Bearer "+p.SecretKey)
	resp, err := p.client.Do(apiReq)
	if err != nil {
		return nil, fmt.Errorf("%w: verify: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: verify: status %d", ErrUnavailable, resp.StatusCode)
	}
	var out paystackVerifyResp
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("%w: verify: decode: %v", ErrUnavailable, err)
	}
	return &VerifyResult{
		Status:        normalizeStatus(out.Data.Status),
		GatewayStatus: out.Data.Status,
		AmountCents:   out.Data.Amount,
	}, nil
}

// normalizeStatus maps Paystack transaction states onto the four-way Status.
// Abandoned checkouts count as failed; in-flight states stay pending so the
// reconciler re-checks them later.
func normalizeStatus(s string) Status {
	switch s {
	case "success":
		return StatusSuccess
	case "failed", "abandoned", "reversed":
		return StatusFailed
	case "pending", "ongoing", "processing", "queued", "paused":
		return StatusPending
	default:
		return StatusUnknown
	}
}

// WebhookEvent is the push payload: {"event": "charge.success", "data": {"reference": "..."}}.
type WebhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
	} `json:"data"`
}

func DecodeWebhook(body []byte) (*WebhookEvent, error) {
	var ev WebhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// ValidSignature checks the x-paystack-signature header: HMAC-SHA512 of the
// raw body keyed with the account secret.
func ValidSignature(secret string, body []byte, signature string) bool {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}
