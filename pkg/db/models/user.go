package models

import (
	"time"

	"github.com/nexusmarket/backend/pkg/enums"
)

// User is a marketplace account: customer, seller, or admin.
type User struct {
	UserID        string         `gorm:"column:user_id;primaryKey" json:"user_id"`
	Email         string         `gorm:"column:email;uniqueIndex;not null" json:"email"`
	Name          string         `gorm:"column:name;not null" json:"name"`
	PasswordHash  string         `gorm:"column:password_hash;not null" json:"-"`
	Role          enums.UserRole `gorm:"column:role;not null;default:customer" json:"role"`
	Picture       *string        `gorm:"column:picture" json:"picture,omitempty"`
	LoyaltyPoints int            `gorm:"column:loyalty_points;not null;default:0" json:"loyalty_points"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
