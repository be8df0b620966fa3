package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/nexusmarket/backend/internal/catalog"
	"github.com/nexusmarket/backend/pkg/db/models"
	pkgerrors "github.com/nexusmarket/backend/pkg/errors"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:cart_" + uuid.NewString() + "?mode=memory&cache=shared"
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

	if err := conn.AutoMigrate(&models.Product{}, &models.CartItem{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := openTestDB(t)
	svc, err := NewService(NewRepository(conn), catalog.NewRepository(conn))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, conn
}

func seedProduct(t *testing.T, conn *gorm.DB, productID string, price float64, stock int) {
	t.Helper()
	product := &models.Product{
		ProductID:   productID,
		SellerID:    "user_seller",
		Name:        "Cart Product " + productID,
		Description: "cartable",
		Price:       price,
		CategoryID:  "cat_test",
		Stock:       stock,
		Images:      []string{"https://img.example/" + productID + ".jpg"},
	}
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
}

func TestAddMergesQuantities(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	seedProduct(t, conn, "prod_c1", 15.50, 10)

	if err := svc.Add(ctx, "user_1", LineInput{ProductID: "prod_c1", Quantity: 2}); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if err := svc.Add(ctx, "user_1", LineInput{ProductID: "prod_c1", Quantity: 3}); err != nil {
		t.Fatalf("second add: %v", err)
	}

	view, err := svc.Get(ctx, "user_1")
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if len(view.Items) != 1 {
		t.Fatalf("expected merged line, got %d lines", len(view.Items))
	}
	if view.Items[0].Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", view.Items[0].Quantity)
	}
	if view.Total != 77.50 {
		t.Fatalf("expected total 77.50, got %v", view.Total)
	}
	if view.Items[0].Product.Image == nil {
		t.Fatal("expected product image carried into the view")
	}
}

func TestAddRespectsStock(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	seedProduct(t, conn, "prod_c2", 5, 4)

	if err := svc.Add(ctx, "user_1", LineInput{ProductID: "prod_c2", Quantity: 5}); !pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	if err := svc.Add(ctx, "user_1", LineInput{ProductID: "prod_c2", Quantity: 3}); err != nil {
		t.Fatalf("add within stock: %v", err)
	}
	// Merge would exceed stock: rejected, existing line untouched.
	if err := svc.Add(ctx, "user_1", LineInput{ProductID: "prod_c2", Quantity: 2}); !pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock) {
		t.Fatalf("expected merge to be rejected, got %v", err)
	}

	view, err := svc.Get(ctx, "user_1")
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if view.Items[0].Quantity != 3 {
		t.Fatalf("expected quantity 3 after rejected merge, got %d", view.Items[0].Quantity)
	}

	if err := svc.Add(ctx, "user_1", LineInput{ProductID: "prod_missing", Quantity: 1}); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := svc.Add(ctx, "user_1", LineInput{ProductID: "prod_c2", Quantity: 0}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestReplaceAndRemove(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	seedProduct(t, conn, "prod_c3", 10, 10)
	seedProduct(t, conn, "prod_c4", 20, 10)

	if err := svc.Replace(ctx, "user_1", []LineInput{
		{ProductID: "prod_c3", Quantity: 1},
		{ProductID: "prod_c4", Quantity: 2},
	}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	view, err := svc.Get(ctx, "user_1")
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if len(view.Items) != 2 || view.Total != 50 {
		t.Fatalf("unexpected cart %+v", view)
	}

	if err := svc.RemoveItem(ctx, "user_1", "prod_c3"); err != nil {
		t.Fatalf("remove item: %v", err)
	}
	view, err = svc.Get(ctx, "user_1")
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if len(view.Items) != 1 || view.Items[0].ProductID != "prod_c4" {
		t.Fatalf("unexpected cart after remove %+v", view)
	}

	if err := svc.Clear(ctx, "user_1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	view, err = svc.Get(ctx, "user_1")
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if len(view.Items) != 0 || view.Total != 0 {
		t.Fatalf("expected empty cart, got %+v", view)
	}
}

func TestGetSkipsDeletedProducts(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	seedProduct(t, conn, "prod_c5", 10, 10)

	if err := svc.Add(ctx, "user_1", LineInput{ProductID: "prod_c5", Quantity: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := conn.Where("product_id = ?", "prod_c5").Delete(&models.Product{}).Error; err != nil {
		t.Fatalf("delete product: %v", err)
	}

	view, err := svc.Get(ctx, "user_1")
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if len(view.Items) != 0 || view.Total != 0 {
		t.Fatalf("expected orphaned line skipped, got %+v", view)
	}
}
