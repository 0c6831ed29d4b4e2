package models

import "time"

type Favourite struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"not null;uniqueIndex:idx_favourites_user_file" json:"user_id"`
	FileID uint `gorm:"not null;uniqueIndex:idx_favourites_user_file" json:"file_id"`

	CreatedAt time.Time `json:"created_at"`

	File File `gorm:"foreignKey:FileID" json:"file,omitempty"`
}
