package models

import (
	"time"

	"github.com/nexusmarket/backend/pkg/enums"
)

// PaymentTransaction records one checkout session opened against an order.
// PaymentStatus moves from initiated to paid at most once; that transition
// is the idempotency gate for all paid-order side effects.
type PaymentTransaction struct {
	TransactionID string                  `gorm:"column:transaction_id;primaryKey" json:"transaction_id"`
	SessionID     string                  `gorm:"column:session_id;uniqueIndex;not null" json:"session_id"`
	OrderID       string                  `gorm:"column:order_id;index;not null" json:"order_id"`
	UserID        string                  `gorm:"column:user_id;not null" json:"user_id"`
	Amount        float64                 `gorm:"column:amount;not null" json:"amount"`
	Currency      string                  `gorm:"column:currency;not null" json:"currency"`
	PaymentStatus enums.TransactionStatus `gorm:"column:payment_status;not null;default:initiated" json:"payment_status"`
	CreatedAt     time.Time               `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time               `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
