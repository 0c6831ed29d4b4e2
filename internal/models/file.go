package models

import (
	"strings"
	"time"
	"unicode"

	"vendora/internal/domain"

	"gorm.io/gorm"
)

type File struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"uniqueIndex;size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Slug        string `gorm:"uniqueIndex;size:255" json:"slug"`
	PriceCents  int64  `gorm:"not null" json:"price_cents"`

	URL            string `gorm:"size:512;not null" json:"url"` // stored content location (Cloudinary)
	CloudinaryID   string `gorm:"size:255" json:"-"`
	PreviewImage   string `gorm:"size:512" json:"preview_image"`
	PreviewImageID string `gorm:"size:255" json:"-"`

	Views       int64  `gorm:"default:0" json:"views"`
	Sales       int64  `gorm:"default:0" json:"sales"`
	Status      string `gorm:"size:20;not null;default:'published'" json:"status"` // pending | published | rejected
	IsAvailable bool   `gorm:"default:true" json:"is_available"`

	CreatorID  uint `gorm:"not null;index" json:"creator_id"`
	CategoryID uint `gorm:"not null;index" json:"category_id"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Creator  User     `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Category Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

func (f *File) Purchasable() bool {
	return f.IsAvailable && f.Status == domain.FileStatusPublished
}

// BeforeSave keeps the slug in sync with the title.
func (f *File) BeforeSave(tx *gorm.DB) error {
	if f.Title != "" {
		f.Slug = Slugify(f.Title)
	}
	return nil
}

// Slugify lowercases s and collapses every non-alphanumeric run into a
// single hyphen.
func Slugify(s string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
		} else if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}
