package models

import (
	"time"

	"gorm.io/gorm"
)

type Category struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"uniqueIndex;size:128;not null" json:"name"`
	Slug        string `gorm:"uniqueIndex;size:128" json:"slug"`
	Description string `gorm:"type:text" json:"description"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Category) BeforeSave(tx *gorm.DB) error {
	if c.Name != "" {
		c.Slug = Slugify(c.Name)
	}
	return nil
}
