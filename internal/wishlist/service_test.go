package wishlist

import (
	"context"
	"testing"
	"time"

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
	dsn := "file:wishlist_" + uuid.NewString() + "?mode=memory&cache=shared"
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

	if err := conn.AutoMigrate(&models.Product{}, &models.WishlistItem{}); err != nil {
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

func seedProduct(t *testing.T, conn *gorm.DB, productID string) {
	t.Helper()
	product := &models.Product{
		ProductID:   productID,
		SellerID:    "user_seller",
		Name:        "Saved Product " + productID,
		Description: "saveable",
		Price:       25,
		CategoryID:  "cat_test",
		Stock:       5,
	}
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
}

func TestWishlistSetSemantics(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	seedProduct(t, conn, "prod_w1")

	if err := svc.Add(ctx, "user_1", "prod_w1"); err != nil {
		t.Fatalf("add: %v", err)
	}
	// Re-adding an already saved product is a no-op, not an error.
	if err := svc.Add(ctx, "user_1", "prod_w1"); err != nil {
		t.Fatalf("re-add: %v", err)
	}

	view, err := svc.Get(ctx, "user_1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(view.Items) != 1 || view.Items[0].ProductID != "prod_w1" {
		t.Fatalf("unexpected wishlist %+v", view.Items)
	}
}

func TestWishlistAddUnknownProduct(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.Add(ctx, "user_1", "prod_missing"); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := svc.Add(ctx, "user_1", ""); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestWishlistRemoveAndOrdering(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	seedProduct(t, conn, "prod_w2")
	seedProduct(t, conn, "prod_w3")

	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"prod_w2", "prod_w3"} {
		item := &models.WishlistItem{
			UserID:    "user_1",
			ProductID: id,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := conn.Create(item).Error; err != nil {
			t.Fatalf("seed wishlist item: %v", err)
		}
	}

	view, err := svc.Get(ctx, "user_1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(view.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(view.Items))
	}
	if view.Items[0].ProductID != "prod_w3" {
		t.Fatalf("expected newest save first, got %s", view.Items[0].ProductID)
	}

	if err := svc.Remove(ctx, "user_1", "prod_w3"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	// Removing a product that is not saved is a no-op.
	if err := svc.Remove(ctx, "user_1", "prod_w3"); err != nil {
		t.Fatalf("second remove: %v", err)
	}

	view, err = svc.Get(ctx, "user_1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(view.Items) != 1 || view.Items[0].ProductID != "prod_w2" {
		t.Fatalf("unexpected wishlist after remove %+v", view.Items)
	}
}

func TestWishlistSkipsDeletedProducts(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	seedProduct(t, conn, "prod_w4")

	if err := svc.Add(ctx, "user_1", "prod_w4"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := conn.Where("product_id = ?", "prod_w4").Delete(&models.Product{}).Error; err != nil {
		t.Fatalf("delete product: %v", err)
	}

	view, err := svc.Get(ctx, "user_1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(view.Items) != 0 {
		t.Fatalf("expected orphaned save skipped, got %+v", view.Items)
	}
}
