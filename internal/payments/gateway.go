package payments

import (
	"context"
	"strings"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/checkout/session"

	"github.com/nexusmarket/backend/pkg/config"
	"github.com/nexusmarket/backend/pkg/db/models"
	"github.com/nexusmarket/backend/pkg/money"
	pkgstripe "github.com/nexusmarket/backend/pkg/stripe"
)

// SessionStatus is the gateway's view of a checkout session.
type SessionStatus string

const (
	SessionStatusPaid   SessionStatus = "paid"
	SessionStatusUnpaid SessionStatus = "unpaid"
)

// EventCheckoutCompleted is the only webhook event type that settles a
// session. Other lifecycle events (expired, async updates) carry session ids
// for sessions that were never paid.
const EventCheckoutCompleted = "checkout.session.completed"

// CheckoutSession is a hosted payment page created for an order.
type CheckoutSession struct {
	SessionID   string
	CheckoutURL string
}

// Gateway abstracts the payment provider so the coordinator can be tested
// without network calls. originURL, when set, anchors the success and cancel
// redirects to the storefront that initiated checkout.
type Gateway interface {
	CreateSession(ctx context.Context, order *models.Order, originURL string) (*CheckoutSession, error)
	GetSessionStatus(ctx context.Context, sessionID string) (SessionStatus, error)
}

type stripeGateway struct {
	cfg config.CheckoutConfig
}

// NewStripeGateway builds hosted checkout sessions through Stripe. The
// wrapped client must already be initialized; only env metadata is read from
// it here since the bindings are keyed globally.
func NewStripeGateway(client *pkgstripe.Client, cfg config.CheckoutConfig) Gateway {
	if client == nil {
		return nil
	}
	return &stripeGateway{cfg: cfg}
}

func (g *stripeGateway) CreateSession(ctx context.Context, order *models.Order, originURL string) (*CheckoutSession, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.GatewayTimeout)
	defer cancel()

	successURL := g.cfg.SuccessURL
	cancelURL := g.cfg.CancelURL
	if origin := strings.TrimRight(strings.TrimSpace(originURL), "/"); origin != "" {
		successURL = origin + "/checkout/success?session_id={CHECKOUT_SESSION_ID}"
		cancelURL = origin + "/checkout/cancel"
	}

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(order.Lines)+1)
	for _, line := range order.Lines {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(int64(line.Quantity)),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(g.cfg.Currency),
				UnitAmount: stripe.Int64(money.Cents(line.Price)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(line.ProductName),
				},
			},
		})
	}
	extras := order.Tax + order.Shipping
	if extras > 0 {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(g.cfg.Currency),
				UnitAmount: stripe.Int64(money.Cents(extras)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String("Tax and shipping"),
				},
			},
		})
	}

	params := &stripe.CheckoutSessionParams{
		Params:     stripe.Params{Context: ctx},
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:  lineItems,
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
		Metadata: map[string]string{
			"order_id": order.OrderID,
			"user_id":  order.UserID,
		},
	}
	sess, err := session.New(params)
	if err != nil {
		return nil, err
	}
	return &CheckoutSession{SessionID: sess.ID, CheckoutURL: sess.URL}, nil
}

func (g *stripeGateway) GetSessionStatus(ctx context.Context, sessionID string) (SessionStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.GatewayTimeout)
	defer cancel()

	params := &stripe.CheckoutSessionParams{Params: stripe.Params{Context: ctx}}
	sess, err := session.Get(sessionID, params)
	if err != nil {
		return "", err
	}
	if sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid {
		return SessionStatusPaid, nil
	}
	return SessionStatusUnpaid, nil
}
