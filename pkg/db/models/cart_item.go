package models

import "time"

// CartItem is one product line in a user's cart.
type CartItem struct {
	UserID    string    `gorm:"column:user_id;primaryKey" json:"user_id"`
	ProductID string    `gorm:"column:product_id;primaryKey" json:"product_id"`
	Quantity  int       `gorm:"column:quantity;not null" json:"quantity"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
