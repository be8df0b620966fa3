package orders

import (
	"context"

	"gorm.io/gorm"

	"github.com/nexusmarket/backend/pkg/db"
	"github.com/nexusmarket/backend/pkg/db/models"
	"github.com/nexusmarket/backend/pkg/enums"
	pkgerrors "github.com/nexusmarket/backend/pkg/errors"
	"github.com/nexusmarket/backend/pkg/ids"
	"github.com/nexusmarket/backend/pkg/money"
	"github.com/nexusmarket/backend/pkg/types"

	"github.com/shopspring/decimal"
)

type cartStore interface {
	ListItems(ctx context.Context, userID string) ([]models.CartItem, error)
}

type productLoader interface {
	FindProductsByIDs(ctx context.Context, productIDs []string) ([]models.Product, error)
	ListProductIDsBySeller(ctx context.Context, sellerID string) ([]string, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CreateOrderInput carries the checkout form for a new order. Lines come
// from the user's cart, not from the request.
type CreateOrderInput struct {
	ShippingAddress types.StringMap
	PaymentMethod   enums.PaymentMethod
}

// UpdateStatusInput is an admin fulfillment update.
type UpdateStatusInput struct {
	Status         enums.OrderStatus
	TrackingNumber *string
}

// Service turns carts into orders and exposes role-scoped order queries.
type Service interface {
	Create(ctx context.Context, userID string, input CreateOrderInput) (*models.Order, error)
	List(ctx context.Context, actorID string, role enums.UserRole) ([]models.Order, error)
	Get(ctx context.Context, actorID string, role enums.UserRole, orderID string) (*models.Order, error)
	UpdateStatus(ctx context.Context, orderID string, input UpdateStatusInput) (*models.Order, error)
}

type service struct {
	repo     *Repository
	cart     cartStore
	products productLoader
	tx       txRunner
}

func NewService(repo *Repository, cart cartStore, products productLoader, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders: repository is required")
	}
	if cart == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders: cart store is required")
	}
	if products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders: product loader is required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders: tx runner is required")
	}
	return &service{repo: repo, cart: cart, products: products, tx: tx}, nil
}

// Create builds an order from the user's cart. Stock is checked per line but
// not decremented; stock only moves when the payment settles. On success the
// cart is emptied in the same transaction.
func (s *service) Create(ctx context.Context, userID string, input CreateOrderInput) (*models.Order, error) {
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}

	items, err := s.cart.ListItems(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list cart")
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	productIDs := make([]string, 0, len(items))
	for _, item := range items {
		productIDs = append(productIDs, item.ProductID)
	}
	products, err := s.products.FindProductsByIDs(ctx, productIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load products")
	}
	byID := make(map[string]models.Product, len(products))
	for _, product := range products {
		byID[product.ProductID] = product
	}

	lines := make([]models.OrderLine, 0, len(items))
	subtotal := decimal.Zero
	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product no longer available").
				WithDetails(map[string]any{"product_id": item.ProductID})
		}
		if product.Stock < item.Quantity {
			return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
				WithDetails(map[string]any{"product_id": product.ProductID, "stock": product.Stock})
		}

		var image *string
		if len(product.Images) > 0 {
			img := product.Images[0]
			image = &img
		}
		lines = append(lines, models.OrderLine{
			ProductID:   product.ProductID,
			ProductName: product.Name,
			Price:       product.Price,
			Quantity:    item.Quantity,
			Image:       image,
		})
		subtotal = subtotal.Add(money.LineTotal(product.Price, item.Quantity))
	}

	subtotal = money.Round2(subtotal)
	tax := money.Tax(subtotal)
	shipping := money.Shipping(subtotal)
	total := money.Round2(subtotal.Add(tax).Add(shipping))

	order := &models.Order{
		OrderID:         ids.NewOrderID(),
		UserID:          userID,
		Lines:           lines,
		Subtotal:        subtotal.InexactFloat64(),
		Tax:             tax.InexactFloat64(),
		Shipping:        shipping.InexactFloat64(),
		Total:           total.InexactFloat64(),
		Status:          enums.OrderStatusPending,
		PaymentStatus:   enums.PaymentStatusPending,
		PaymentMethod:   input.PaymentMethod,
		ShippingAddress: input.ShippingAddress,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return err
		}
		return tx.WithContext(ctx).
			Where("user_id = ?", userID).
			Delete(&models.CartItem{}).Error
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: create order")
	}
	return order, nil
}

// List scopes orders by role: customers see their own, sellers see orders
// containing their products, admins see everything.
func (s *service) List(ctx context.Context, actorID string, role enums.UserRole) ([]models.Order, error) {
	switch role {
	case enums.RoleAdmin:
		orders, err := s.repo.ListAll(ctx, 0)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list orders")
		}
		return orders, nil
	case enums.RoleSeller:
		productIDs, err := s.products.ListProductIDsBySeller(ctx, actorID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list seller products")
		}
		orders, err := s.repo.ListContainingProducts(ctx, productIDs)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list seller orders")
		}
		return orders, nil
	default:
		orders, err := s.repo.ListByUser(ctx, actorID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list orders")
		}
		return orders, nil
	}
}

// Get returns one order. Customers may only read their own; sellers may read
// orders containing at least one of their products.
func (s *service) Get(ctx context.Context, actorID string, role enums.UserRole, orderID string) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
	}

	switch {
	case role == enums.RoleAdmin:
	case order.UserID == actorID:
	case role == enums.RoleSeller:
		productIDs, err := s.products.ListProductIDsBySeller(ctx, actorID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list seller products")
		}
		if !orderContainsAny(order, productIDs) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not your order")
		}
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not your order")
	}
	return order, nil
}

// UpdateStatus is the admin fulfillment update.
func (s *service) UpdateStatus(ctx context.Context, orderID string, input UpdateStatusInput) (*models.Order, error) {
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	if err := s.repo.UpdateStatus(ctx, orderID, input.Status, input.TrackingNumber); err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update order status")
	}
	return s.Get(ctx, "", enums.RoleAdmin, orderID)
}

func orderContainsAny(order *models.Order, productIDs []string) bool {
	set := make(map[string]struct{}, len(productIDs))
	for _, id := range productIDs {
		set[id] = struct{}{}
	}
	for _, line := range order.Lines {
		if _, ok := set[line.ProductID]; ok {
			return true
		}
	}
	return false
}
