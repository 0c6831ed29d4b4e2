package models

import (
	"testing"

	"vendora/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Procreate Brush Pack":      "procreate-brush-pack",
		"  Lots   of   spaces  ":    "lots-of-spaces",
		"UI Kit v2.1 (Figma)":       "ui-kit-v2-1-figma",
		"Ebook: Go, The Hard Way!":  "ebook-go-the-hard-way",
		"already-a-slug":            "already-a-slug",
		"ÜBER Template":             "über-template",
		"---":                       "",
		"":                          "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "input=%q", in)
	}
}

func TestNormalizePair(t *testing.T) {
	low, high := NormalizePair(7, 3)
	assert.Equal(t, uint(3), low)
	assert.Equal(t, uint(7), high)

	low, high = NormalizePair(3, 7)
	assert.Equal(t, uint(3), low)
	assert.Equal(t, uint(7), high)
}

func TestChatParticipants(t *testing.T) {
	c := &Chat{UserLowID: 3, UserHighID: 7}
	assert.True(t, c.HasParticipant(3))
	assert.True(t, c.HasParticipant(7))
	assert.False(t, c.HasParticipant(5))

	assert.Equal(t, uint(7), c.OtherParticipant(3))
	assert.Equal(t, uint(3), c.OtherParticipant(7))
	assert.Equal(t, uint(0), c.OtherParticipant(5))
}

func TestFilePurchasable(t *testing.T) {
	f := &File{Status: domain.FileStatusPublished, IsAvailable: true}
	assert.True(t, f.Purchasable())

	f.IsAvailable = false
	assert.False(t, f.Purchasable())

	f.IsAvailable = true
	f.Status = domain.FileStatusPending
	assert.False(t, f.Purchasable())
}

func TestPaymentSettled(t *testing.T) {
	p := &Payment{Status: domain.PaymentPending}
	assert.False(t, p.Settled())
	p.Status = domain.PaymentSuccess
	assert.True(t, p.Settled())
	p.Status = domain.PaymentFailed
	assert.True(t, p.Settled())
}
