package repository

import (
	"errors"

	"vendora/internal/models"

	"gorm.io/gorm"
)

type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// EnsureForPurchase is the get-or-create invoked on first successful
// settlement of a (buyer, creator, file) purchase. Matching is
// participants-primary: an existing thread between the pair is reused no
// matter which file created it, and FileID records only the originating
// purchase. The pair's unique index backstops concurrent callers; a
// duplicate-key create falls through to a re-fetch.
func (r *ChatRepository) EnsureForPurchase(buyerID, creatorID, fileID uint) (*models.Chat, error) {
	low, high := models.NormalizePair(buyerID, creatorID)

	chat, err := r.getByPair(low, high)
	if err == nil {
		return chat, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	c := &models.Chat{UserLowID: low, UserHighID: high, FileID: fileID}
	if err := r.db.Create(c).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return r.getByPair(low, high)
		}
		return nil, err
	}
	return c, nil
}

func (r *ChatRepository) getByPair(low, high uint) (*models.Chat, error) {
	var c models.Chat
	err := r.db.Where("user_low_id = ? AND user_high_id = ?", low, high).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ChatRepository) GetByID(id uint) (*models.Chat, error) {
	var c models.Chat
	if err := r.db.First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// ListByUser returns the user's threads, most recently active first.
func (r *ChatRepository) ListByUser(userID uint) ([]models.Chat, error) {
	var out []models.Chat
	err := r.db.Where("user_low_id = ? OR user_high_id = ?", userID, userID).
		Preload("UserLow").Preload("UserHigh").Preload("File").
		Preload("LastMessage").Preload("LastMessage.Sender").
		Order("updated_at DESC").Find(&out).Error
	return out, err
}

func (r *ChatRepository) CreateMessage(m *models.Message) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		return tx.Model(&models.Chat{}).Where("id = ?", m.ChatID).
			Update("last_message_id", m.ID).Error
	})
}

func (r *ChatRepository) ListMessages(chatID uint, limit, offset int) ([]models.Message, error) {
	var out []models.Message
	err := r.db.Where("chat_id = ?", chatID).Preload("Sender").
		Order("created_at ASC").Limit(limit).Offset(offset).Find(&out).Error
	return out, err
}

// MarkMessagesRead stamps every unread message in the thread not sent by the
// reader.
func (r *ChatRepository) MarkMessagesRead(chatID, readerID uint) error {
	return r.db.Model(&models.Message{}).
		Where("chat_id = ? AND sender_id <> ? AND read_at IS NULL", chatID, readerID).
		Update("read_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
}
