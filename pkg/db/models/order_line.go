package models

// OrderLine is one product line embedded in an order. Lines are not
// independently addressable outside their order.
type OrderLine struct {
	ID          uint    `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	OrderID     string  `gorm:"column:order_id;index;not null" json:"-"`
	ProductID   string  `gorm:"column:product_id;not null" json:"product_id"`
	ProductName string  `gorm:"column:product_name;not null" json:"product_name"`
	Price       float64 `gorm:"column:price;not null" json:"price"`
	Quantity    int     `gorm:"column:quantity;not null" json:"quantity"`
	Image       *string `gorm:"column:image" json:"image,omitempty"`
}
