package models

import (
	"time"

	"vendora/internal/domain"

	"gorm.io/gorm"
)

type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Name         string `gorm:"size:128;not null" json:"name"`
	Email        string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string `gorm:"size:255" json:"-"` // empty for OAuth-only accounts
	AvatarURL    string `gorm:"size:512" json:"avatar_url"`
	Role         string `gorm:"size:20;not null;index;default:'user'" json:"role"` // user | creator | admin
	GoogleID     *string `gorm:"uniqueIndex;size:255" json:"-"` // nil for email signups (avoids duplicate '' on unique index)

	ResetPasswordToken   string     `gorm:"size:128;index" json:"-"` // sha256 of the emailed token
	ResetPasswordExpires *time.Time `json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) IsCreator() bool { return u.Role == domain.RoleCreator }
func (u *User) IsAdmin() bool   { return u.Role == domain.RoleAdmin }
