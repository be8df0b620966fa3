package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/nexusmarket/backend/internal/cart"
	"github.com/nexusmarket/backend/internal/catalog"
	"github.com/nexusmarket/backend/pkg/db/models"
	"github.com/nexusmarket/backend/pkg/enums"
	pkgerrors "github.com/nexusmarket/backend/pkg/errors"
	"github.com/nexusmarket/backend/pkg/types"
)

type gormTx struct {
	db *gorm.DB
}

func (g *gormTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return g.db.WithContext(ctx).Transaction(fn)
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:orders_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("extract sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	tables := []any{&models.Product{}, &models.CartItem{}, &models.Order{}, &models.OrderLine{}}
	if err := conn.AutoMigrate(tables...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := openTestDB(t)
	svc, err := NewService(NewRepository(conn), cart.NewRepository(conn), catalog.NewRepository(conn), &gormTx{db: conn})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, conn
}

func seedProduct(t *testing.T, conn *gorm.DB, productID, sellerID string, price float64, stock int) {
	t.Helper()
	product := &models.Product{
		ProductID:   productID,
		SellerID:    sellerID,
		Name:        "Order Product " + productID,
		Description: "orderable",
		Price:       price,
		CategoryID:  "cat_test",
		Stock:       stock,
	}
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
}

func seedCartLine(t *testing.T, conn *gorm.DB, userID, productID string, qty int) {
	t.Helper()
	item := &models.CartItem{UserID: userID, ProductID: productID, Quantity: qty}
	if err := conn.Create(item).Error; err != nil {
		t.Fatalf("seed cart line: %v", err)
	}
}

func createOrderInput() CreateOrderInput {
	return CreateOrderInput{
		ShippingAddress: types.StringMap{"street": "1 Main St", "city": "Springfield"},
		PaymentMethod:   enums.PaymentMethodStripe,
	}
}

func TestCreateOrderTotalsBelowFreeShipping(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	seedProduct(t, conn, "prod_o1", "user_seller", 45, 10)
	seedCartLine(t, conn, "user_1", "prod_o1", 2)

	order, err := svc.Create(ctx, "user_1", createOrderInput())
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.Subtotal != 90 || order.Tax != 9 || order.Shipping != 10 || order.Total != 109 {
		t.Fatalf("unexpected totals: subtotal=%v tax=%v shipping=%v total=%v",
			order.Subtotal, order.Tax, order.Shipping, order.Total)
	}
	if order.Status != enums.OrderStatusPending || order.PaymentStatus != enums.PaymentStatusPending {
		t.Fatalf("unexpected initial state: %s/%s", order.Status, order.PaymentStatus)
	}
	if len(order.Lines) != 1 || order.Lines[0].ProductName == "" || order.Lines[0].Price != 45 {
		t.Fatalf("unexpected lines: %+v", order.Lines)
	}

	// Stock is untouched until payment settles.
	var product models.Product
	if err := conn.First(&product, "product_id = ?", "prod_o1").Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if product.Stock != 10 {
		t.Fatalf("expected stock untouched, got %d", product.Stock)
	}

	// Cart is emptied.
	var remaining int64
	if err := conn.Model(&models.CartItem{}).Where("user_id = ?", "user_1").Count(&remaining).Error; err != nil {
		t.Fatalf("count cart: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("expected empty cart, got %d lines", remaining)
	}
}

func TestCreateOrderTotalsFreeShipping(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	seedProduct(t, conn, "prod_o2", "user_seller", 75, 10)
	seedCartLine(t, conn, "user_1", "prod_o2", 2)

	order, err := svc.Create(ctx, "user_1", createOrderInput())
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.Subtotal != 150 || order.Tax != 15 || order.Shipping != 0 || order.Total != 165 {
		t.Fatalf("unexpected totals: subtotal=%v tax=%v shipping=%v total=%v",
			order.Subtotal, order.Tax, order.Shipping, order.Total)
	}
}

func TestCreateOrderRejections(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "user_1", createOrderInput()); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected empty-cart rejection, got %v", err)
	}

	seedProduct(t, conn, "prod_o3", "user_seller", 10, 1)
	seedCartLine(t, conn, "user_1", "prod_o3", 3)
	if _, err := svc.Create(ctx, "user_1", createOrderInput()); !pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	// Rejection persists nothing and keeps the cart.
	var orderCount, cartCount int64
	if err := conn.Model(&models.Order{}).Count(&orderCount).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if err := conn.Model(&models.CartItem{}).Count(&cartCount).Error; err != nil {
		t.Fatalf("count cart: %v", err)
	}
	if orderCount != 0 || cartCount != 1 {
		t.Fatalf("expected no order and intact cart, got orders=%d cart=%d", orderCount, cartCount)
	}

	input := createOrderInput()
	input.PaymentMethod = enums.PaymentMethod("cash")
	if _, err := svc.Create(ctx, "user_1", input); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected payment method rejection, got %v", err)
	}
}

func TestListScopedByRole(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	seedProduct(t, conn, "prod_o4", "user_sellerA", 20, 10)
	seedProduct(t, conn, "prod_o5", "user_sellerB", 30, 10)

	seedCartLine(t, conn, "user_1", "prod_o4", 1)
	if _, err := svc.Create(ctx, "user_1", createOrderInput()); err != nil {
		t.Fatalf("create first order: %v", err)
	}
	seedCartLine(t, conn, "user_2", "prod_o5", 1)
	if _, err := svc.Create(ctx, "user_2", createOrderInput()); err != nil {
		t.Fatalf("create second order: %v", err)
	}

	own, err := svc.List(ctx, "user_1", enums.RoleCustomer)
	if err != nil {
		t.Fatalf("customer list: %v", err)
	}
	if len(own) != 1 || own[0].UserID != "user_1" {
		t.Fatalf("unexpected customer orders %+v", own)
	}

	sellerOrders, err := svc.List(ctx, "user_sellerA", enums.RoleSeller)
	if err != nil {
		t.Fatalf("seller list: %v", err)
	}
	if len(sellerOrders) != 1 || sellerOrders[0].UserID != "user_1" {
		t.Fatalf("unexpected seller orders %+v", sellerOrders)
	}

	all, err := svc.List(ctx, "user_admin", enums.RoleAdmin)
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 orders for admin, got %d", len(all))
	}
}

func TestGetEnforcesOwnership(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	seedProduct(t, conn, "prod_o6", "user_sellerA", 20, 10)
	seedCartLine(t, conn, "user_1", "prod_o6", 1)
	order, err := svc.Create(ctx, "user_1", createOrderInput())
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if _, err := svc.Get(ctx, "user_1", enums.RoleCustomer, order.OrderID); err != nil {
		t.Fatalf("owner read: %v", err)
	}
	if _, err := svc.Get(ctx, "user_2", enums.RoleCustomer, order.OrderID); !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden for stranger, got %v", err)
	}
	if _, err := svc.Get(ctx, "user_sellerA", enums.RoleSeller, order.OrderID); err != nil {
		t.Fatalf("seller with product in order: %v", err)
	}
	if _, err := svc.Get(ctx, "user_sellerB", enums.RoleSeller, order.OrderID); !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden for unrelated seller, got %v", err)
	}
	if _, err := svc.Get(ctx, "user_admin", enums.RoleAdmin, "ord_missing"); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateStatus(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	seedProduct(t, conn, "prod_o7", "user_seller", 20, 10)
	seedCartLine(t, conn, "user_1", "prod_o7", 1)
	order, err := svc.Create(ctx, "user_1", createOrderInput())
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	tracking := "TRACK-123"
	updated, err := svc.UpdateStatus(ctx, order.OrderID, UpdateStatusInput{
		Status:         enums.OrderStatusShipped,
		TrackingNumber: &tracking,
	})
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if updated.Status != enums.OrderStatusShipped {
		t.Fatalf("expected shipped, got %s", updated.Status)
	}
	if updated.TrackingNumber == nil || *updated.TrackingNumber != tracking {
		t.Fatalf("expected tracking number persisted, got %v", updated.TrackingNumber)
	}

	if _, err := svc.UpdateStatus(ctx, order.OrderID, UpdateStatusInput{Status: enums.OrderStatus("lost")}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected status validation, got %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, "ord_missing", UpdateStatusInput{Status: enums.OrderStatusShipped}); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
