package models

import (
	"time"
)

// Chat is one thread per buyer/creator pair. The pair is stored normalized
// (UserLowID < UserHighID) under a composite unique index so concurrent
// provisioning attempts collapse onto one row. FileID records the purchase
// that first created the thread.
type Chat struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	UserLowID  uint `gorm:"not null;uniqueIndex:idx_chats_pair" json:"-"`
	UserHighID uint `gorm:"not null;uniqueIndex:idx_chats_pair" json:"-"`
	FileID     uint `gorm:"not null;index" json:"file_id"`

	LastMessageID *uint `json:"last_message_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserLow     User     `gorm:"foreignKey:UserLowID" json:"-"`
	UserHigh    User     `gorm:"foreignKey:UserHighID" json:"-"`
	File        File     `gorm:"foreignKey:FileID" json:"file,omitempty"`
	LastMessage *Message `gorm:"foreignKey:LastMessageID" json:"last_message,omitempty"`
}

// HasParticipant reports whether userID is one side of the thread.
func (c *Chat) HasParticipant(userID uint) bool {
	return c.UserLowID == userID || c.UserHighID == userID
}

// OtherParticipant returns the peer of userID (0 if userID is not a member).
func (c *Chat) OtherParticipant(userID uint) uint {
	switch userID {
	case c.UserLowID:
		return c.UserHighID
	case c.UserHighID:
		return c.UserLowID
	}
	return 0
}

// NormalizePair orders two user IDs for the chat pair columns.
func NormalizePair(a, b uint) (low, high uint) {
	if a > b {
		return b, a
	}
	return a, b
}

type Message struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	ChatID   uint   `gorm:"not null;index" json:"chat_id"`
	SenderID uint   `gorm:"not null;index" json:"sender_id"`
	Body     string `gorm:"type:text;not null" json:"body"`

	// ReadAt is set when the non-sender participant marks the message read;
	// threads are strictly two-party so one timestamp suffices.
	ReadAt *time.Time `json:"read_at"`

	CreatedAt time.Time `json:"created_at"`

	Sender User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}
