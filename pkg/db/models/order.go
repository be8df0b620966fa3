package models

import (
	"time"

	"github.com/nexusmarket/backend/pkg/enums"
	"github.com/nexusmarket/backend/pkg/types"
)

// Order is a buyer's purchase. Monetary fields are derived at creation and
// never independently mutated afterwards.
type Order struct {
	OrderID         string              `gorm:"column:order_id;primaryKey" json:"order_id"`
	UserID          string              `gorm:"column:user_id;index;not null" json:"user_id"`
	Lines           []OrderLine         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Subtotal        float64             `gorm:"column:subtotal;not null" json:"subtotal"`
	Tax             float64             `gorm:"column:tax;not null" json:"tax"`
	Shipping        float64             `gorm:"column:shipping;not null" json:"shipping"`
	Total           float64             `gorm:"column:total;not null" json:"total"`
	Status          enums.OrderStatus   `gorm:"column:status;not null;default:pending" json:"status"`
	PaymentStatus   enums.PaymentStatus `gorm:"column:payment_status;not null;default:pending" json:"payment_status"`
	PaymentMethod   enums.PaymentMethod `gorm:"column:payment_method;not null" json:"payment_method"`
	ShippingAddress types.StringMap     `gorm:"column:shipping_address;type:jsonb" json:"shipping_address"`
	TrackingNumber  *string             `gorm:"column:tracking_number" json:"tracking_number,omitempty"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
