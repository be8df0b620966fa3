package models

import "time"

// Review is a user's rating of a product. One review per user per product.
type Review struct {
	ReviewID  string    `gorm:"column:review_id;primaryKey" json:"review_id"`
	ProductID string    `gorm:"column:product_id;index:idx_reviews_product_user,unique;not null" json:"product_id"`
	UserID    string    `gorm:"column:user_id;index:idx_reviews_product_user,unique;not null" json:"user_id"`
	UserName  string    `gorm:"column:user_name;not null" json:"user_name"`
	Rating    int       `gorm:"column:rating;not null" json:"rating"`
	Comment   string    `gorm:"column:comment;not null" json:"comment"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
