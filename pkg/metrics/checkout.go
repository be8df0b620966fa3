package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics counts the interesting outcomes of payment settlement.
type CheckoutMetrics struct {
	sessionsOpened         prometheus.Counter
	paymentsSettled        prometheus.Counter
	duplicateConfirmations prometheus.Counter
	stockShortfalls        prometheus.Counter
}

// NewCheckoutMetrics registers checkout counters on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	sessionsOpened := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_sessions_opened_total",
		Help: "Payment sessions opened for pending orders.",
	})
	paymentsSettled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_payments_settled_total",
		Help: "Payments settled exactly once after confirmation.",
	})
	duplicateConfirmations := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_duplicate_confirmations_total",
		Help: "Confirmations that arrived after the payment was already settled.",
	})
	stockShortfalls := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_stock_shortfalls_total",
		Help: "Order lines whose stock decrement could not be applied in full.",
	})
	reg.MustRegister(sessionsOpened, paymentsSettled, duplicateConfirmations, stockShortfalls)
	return &CheckoutMetrics{
		sessionsOpened:         sessionsOpened,
		paymentsSettled:        paymentsSettled,
		duplicateConfirmations: duplicateConfirmations,
		stockShortfalls:        stockShortfalls,
	}
}

// IncSessionOpened counts a newly opened payment session.
func (c *CheckoutMetrics) IncSessionOpened() {
	if c == nil || c.sessionsOpened == nil {
		return
	}
	c.sessionsOpened.Inc()
}

// IncPaymentSettled counts a settled payment.
func (c *CheckoutMetrics) IncPaymentSettled() {
	if c == nil || c.paymentsSettled == nil {
		return
	}
	c.paymentsSettled.Inc()
}

// IncDuplicateConfirmation counts a confirmation that lost the settlement race.
func (c *CheckoutMetrics) IncDuplicateConfirmation() {
	if c == nil || c.duplicateConfirmations == nil {
		return
	}
	c.duplicateConfirmations.Inc()
}

// IncStockShortfall counts an order line that sold past the available stock.
func (c *CheckoutMetrics) IncStockShortfall() {
	if c == nil || c.stockShortfalls == nil {
		return
	}
	c.stockShortfalls.Inc()
}
