package payments

import (
	"context"

	"gorm.io/gorm"

	"github.com/nexusmarket/backend/internal/catalog"
	"github.com/nexusmarket/backend/internal/inventory"
	"github.com/nexusmarket/backend/internal/orders"
	"github.com/nexusmarket/backend/internal/users"
	"github.com/nexusmarket/backend/pkg/db"
	"github.com/nexusmarket/backend/pkg/db/models"
	"github.com/nexusmarket/backend/pkg/enums"
	pkgerrors "github.com/nexusmarket/backend/pkg/errors"
	"github.com/nexusmarket/backend/pkg/ids"
	"github.com/nexusmarket/backend/pkg/logger"
	"github.com/nexusmarket/backend/pkg/metrics"
	"github.com/nexusmarket/backend/pkg/money"
)

// Confirmation statuses reported back to the buyer.
const (
	StatusPaid    = "paid"
	StatusUnpaid  = "unpaid"
	StatusUnknown = "unknown"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// OpenSessionResult is the hosted payment page handed to the buyer.
type OpenSessionResult struct {
	URL       string `json:"url"`
	SessionID string `json:"session_id"`
}

// ConfirmResult reports the session state after a confirmation poll. Status
// is the session lifecycle (open/complete), PaymentStatus the money side.
type ConfirmResult struct {
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	OrderID       string `json:"order_id,omitempty"`
}

func confirmResultFor(paymentStatus, orderID string) *ConfirmResult {
	status := StatusUnknown
	switch paymentStatus {
	case StatusPaid:
		status = "complete"
	case StatusUnpaid:
		status = "open"
	}
	return &ConfirmResult{Status: status, PaymentStatus: paymentStatus, OrderID: orderID}
}

// Coordinator owns the payment lifecycle: it opens gateway sessions for
// pending orders and settles paid sessions exactly once.
type Coordinator interface {
	OpenSession(ctx context.Context, userID, orderID, originURL string) (*OpenSessionResult, error)
	ConfirmPayment(ctx context.Context, sessionID string) (*ConfirmResult, error)
	HandleCompletedSession(ctx context.Context, sessionID string) error
}

type coordinator struct {
	repo      *Repository
	orders    *orders.Repository
	catalog   *catalog.Repository
	users     *users.Repository
	gateway   Gateway
	broadcast inventory.Broadcaster
	tx        txRunner
	metrics   *metrics.CheckoutMetrics
	logg      *logger.Logger
	currency  string
}

// CoordinatorDeps wires the coordinator's collaborators.
type CoordinatorDeps struct {
	Transactions *Repository
	Orders       *orders.Repository
	Catalog      *catalog.Repository
	Users        *users.Repository
	Gateway      Gateway
	Broadcast    inventory.Broadcaster
	Tx           txRunner
	Metrics      *metrics.CheckoutMetrics
	Logger       *logger.Logger
	Currency     string
}

func NewCoordinator(deps CoordinatorDeps) (Coordinator, error) {
	switch {
	case deps.Transactions == nil:
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payments: transaction repository is required")
	case deps.Orders == nil:
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payments: order repository is required")
	case deps.Catalog == nil:
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payments: catalog repository is required")
	case deps.Users == nil:
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payments: user repository is required")
	case deps.Gateway == nil:
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payments: gateway is required")
	case deps.Broadcast == nil:
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payments: broadcaster is required")
	case deps.Tx == nil:
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payments: tx runner is required")
	case deps.Logger == nil:
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payments: logger is required")
	}
	currency := deps.Currency
	if currency == "" {
		currency = string(enums.CurrencyUSD)
	}
	return &coordinator{
		repo:      deps.Transactions,
		orders:    deps.Orders,
		catalog:   deps.Catalog,
		users:     deps.Users,
		gateway:   deps.Gateway,
		broadcast: deps.Broadcast,
		tx:        deps.Tx,
		metrics:   deps.Metrics,
		logg:      deps.Logger,
		currency:  currency,
	}, nil
}

// OpenSession creates a gateway checkout session for a pending order and
// records an initiated transaction against it.
func (c *coordinator) OpenSession(ctx context.Context, userID, orderID, originURL string) (*OpenSessionResult, error) {
	order, err := c.orders.FindByID(ctx, orderID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
	}
	// An order owned by someone else reads as absent so order ids do not
	// probe across accounts.
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if order.PaymentStatus == enums.PaymentStatusPaid {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order already paid")
	}

	sess, err := c.gateway.CreateSession(ctx, order, originURL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeGateway, err, "gateway: create session")
	}

	txn := &models.PaymentTransaction{
		TransactionID: ids.NewTransactionID(),
		SessionID:     sess.SessionID,
		OrderID:       order.OrderID,
		UserID:        userID,
		Amount:        order.Total,
		Currency:      c.currency,
		PaymentStatus: enums.TransactionStatusInitiated,
	}
	if _, err := c.repo.Create(ctx, txn); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: record transaction")
	}

	c.metrics.IncSessionOpened()
	return &OpenSessionResult{URL: sess.CheckoutURL, SessionID: sess.SessionID}, nil
}

// ConfirmPayment polls the gateway for the session state. A paid session is
// settled; settling is idempotent so repeated confirmations are safe. A
// gateway failure reports unknown and changes nothing.
func (c *coordinator) ConfirmPayment(ctx context.Context, sessionID string) (*ConfirmResult, error) {
	txn, err := c.repo.FindBySessionID(ctx, sessionID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment session not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load transaction")
	}
	if txn.PaymentStatus == enums.TransactionStatusPaid {
		return confirmResultFor(StatusPaid, txn.OrderID), nil
	}

	status, err := c.gateway.GetSessionStatus(ctx, sessionID)
	if err != nil {
		c.logg.Error(ctx, "payment status check failed", err)
		return confirmResultFor(StatusUnknown, txn.OrderID), nil
	}
	if status != SessionStatusPaid {
		return confirmResultFor(StatusUnpaid, txn.OrderID), nil
	}

	if err := c.settle(ctx, txn); err != nil {
		return nil, err
	}
	return confirmResultFor(StatusPaid, txn.OrderID), nil
}

// HandleCompletedSession settles a session reported complete by the gateway
// webhook. Unknown sessions are ignored so the webhook can always be acked.
func (c *coordinator) HandleCompletedSession(ctx context.Context, sessionID string) error {
	txn, err := c.repo.FindBySessionID(ctx, sessionID)
	if err != nil {
		if db.IsNotFound(err) {
			c.logg.Warn(c.logg.WithField(ctx, "session_id", sessionID), "webhook for unknown payment session")
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load transaction")
	}
	return c.settle(ctx, txn)
}

// settle applies the paid-order side effects behind the initiated-to-paid
// transition. Losing the transition means another caller already settled;
// nothing further happens. Stock is decremented per line and never below
// zero; a line that sold past the available stock is logged and counted but
// the settlement still completes.
func (c *coordinator) settle(ctx context.Context, txn *models.PaymentTransaction) error {
	var stockChanges map[string]int
	settled := false

	err := c.tx.WithTx(ctx, func(tx *gorm.DB) error {
		applied, err := c.repo.WithTx(tx).MarkPaid(ctx, txn.SessionID)
		if err != nil {
			return err
		}
		if !applied {
			return nil
		}
		settled = true
		stockChanges = make(map[string]int)

		order, err := c.orders.WithTx(tx).FindByID(ctx, txn.OrderID)
		if err != nil {
			return err
		}

		for _, line := range order.Lines {
			ok, remaining, err := c.catalog.DecrementStock(ctx, tx, line.ProductID, line.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				c.metrics.IncStockShortfall()
				lctx := c.logg.WithFields(ctx, map[string]any{
					"order_id":   order.OrderID,
					"product_id": line.ProductID,
					"quantity":   line.Quantity,
				})
				c.logg.Warn(lctx, "stock shortfall while settling payment")
				continue
			}
			stockChanges[line.ProductID] = remaining
		}

		if err := c.orders.WithTx(tx).MarkPaid(ctx, order.OrderID); err != nil {
			return err
		}
		return c.users.WithTx(tx).AddLoyaltyPoints(ctx, order.UserID, money.Floor(order.Total))
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: settle payment")
	}

	if !settled {
		c.metrics.IncDuplicateConfirmation()
		return nil
	}

	for productID, stock := range stockChanges {
		c.broadcast.Broadcast(ctx, inventory.StockChanged(productID, stock))
	}
	c.metrics.IncPaymentSettled()
	c.logg.Info(c.logg.WithField(ctx, "order_id", txn.OrderID), "payment settled")
	return nil
}
