package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser    = "USER"
	RoleManager = "MANAGER"
	RoleAdmin   = "ADMIN"
)

type User struct {
	ID        string     `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string     `gorm:"size:255;uniqueIndex" json:"email"`
	Username  string     `gorm:"size:100" json:"username"`
	Role      string     `gorm:"size:7;not null;default:'USER'" json:"role"`
	IsActive  bool       `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
