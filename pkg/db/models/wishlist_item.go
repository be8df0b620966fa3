package models

import "time"

// WishlistItem marks a product as saved by a user. Set semantics: at most
// one row per (user, product).
type WishlistItem struct {
	UserID    string    `gorm:"column:user_id;primaryKey" json:"user_id"`
	ProductID string    `gorm:"column:product_id;primaryKey" json:"product_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
