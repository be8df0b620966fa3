package enums

// PaymentMethod names the checkout provider selected by the buyer.
type PaymentMethod string

const (
	PaymentMethodStripe PaymentMethod = "stripe"
	PaymentMethodPaypal PaymentMethod = "paypal"
)

func (m PaymentMethod) IsValid() bool {
	return m == PaymentMethodStripe || m == PaymentMethodPaypal
}

// Currency is the ISO 4217 code used for charges.
type Currency string

const CurrencyUSD Currency = "usd"
