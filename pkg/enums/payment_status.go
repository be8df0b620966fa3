package enums

// PaymentStatus tracks whether an order has been paid for.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

func (s PaymentStatus) IsValid() bool {
	return s == PaymentStatusPending || s == PaymentStatusPaid
}

// TransactionStatus tracks the lifecycle of a checkout session. A
// transaction moves from initiated to paid at most once.
type TransactionStatus string

const (
	TransactionStatusInitiated TransactionStatus = "initiated"
	TransactionStatusPaid      TransactionStatus = "paid"
)

func (s TransactionStatus) IsValid() bool {
	return s == TransactionStatusInitiated || s == TransactionStatusPaid
}
