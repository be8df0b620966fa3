package catalog

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/nexusmarket/backend/pkg/db/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:catalog_" + uuid.NewString() + "?mode=memory&cache=shared"
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
	// Single connection keeps the shared in-memory database alive and
	// serializes writers the way the production pool does under contention.
	sqlDB.SetMaxOpenConns(1)

	if err := conn.AutoMigrate(&models.Category{}, &models.Product{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func seedProduct(t *testing.T, conn *gorm.DB, product *models.Product) *models.Product {
	t.Helper()
	if product.ProductID == "" {
		product.ProductID = "prod_" + uuid.NewString()[:8]
	}
	if product.SellerID == "" {
		product.SellerID = "user_seller"
	}
	if product.Name == "" {
		product.Name = "Test Product"
	}
	if product.Description == "" {
		product.Description = "A product for testing"
	}
	if product.Price == 0 {
		product.Price = 25.00
	}
	if product.CategoryID == "" {
		product.CategoryID = "cat_test"
	}
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}
