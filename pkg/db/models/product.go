package models

import (
	"time"

	"github.com/lib/pq"
)

// Product is a seller listing. Stock is a non-negative count decremented
// only by confirmed payments.
type Product struct {
	ProductID   string         `gorm:"column:product_id;primaryKey" json:"product_id"`
	SellerID    string         `gorm:"column:seller_id;index;not null" json:"seller_id"`
	Name        string         `gorm:"column:name;not null" json:"name"`
	Description string         `gorm:"column:description;not null" json:"description"`
	Price       float64        `gorm:"column:price;not null" json:"price"`
	CategoryID  string         `gorm:"column:category_id;index;not null" json:"category_id"`
	Images      pq.StringArray `gorm:"column:images;type:text[]" json:"images"`
	Stock       int            `gorm:"column:stock;not null;default:0" json:"stock"`
	Tags        pq.StringArray `gorm:"column:tags;type:text[]" json:"tags"`
	Rating      float64        `gorm:"column:rating;not null;default:0" json:"rating"`
	ReviewCount int            `gorm:"column:review_count;not null;default:0" json:"review_count"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
