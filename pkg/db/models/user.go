package models

import (
	"time"

	"github.com/mercantile-app/mercantile-backend/pkg/enums"
)

// User represents a shopper, merchant, or admin account. Merchants own items
// and volume-discount tiers and are the subject of the leaderboards.
type User struct {
	ID           int64          `gorm:"column:id;primaryKey;autoIncrement"`
	Email        string         `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	Name         string         `gorm:"column:name;not null"`
	Role         enums.UserRole `gorm:"column:role;type:text;not null;default:'shopper'"`
	Active       bool           `gorm:"column:active;not null;default:true"`
	LastLoginAt  *time.Time     `gorm:"column:last_login_at"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
