package admin

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/nexusmarket/backend/internal/catalog"
	"github.com/nexusmarket/backend/internal/orders"
	"github.com/nexusmarket/backend/internal/users"
	"github.com/nexusmarket/backend/pkg/db/models"
	"github.com/nexusmarket/backend/pkg/enums"
	pkgerrors "github.com/nexusmarket/backend/pkg/errors"
)

func newTestService(t *testing.T) (*service, *gorm.DB) {
	t.Helper()
	dsn := "file:admin_" + uuid.NewString() + "?mode=memory&cache=shared"
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

	tables := []any{&models.User{}, &models.Product{}, &models.Order{}, &models.OrderLine{}}
	if err := conn.AutoMigrate(tables...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc, err := NewService(conn, users.NewRepository(conn), catalog.NewRepository(conn), orders.NewRepository(conn))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc.(*service), conn
}

func seedUser(t *testing.T, conn *gorm.DB, userID string, role enums.UserRole) {
	t.Helper()
	user := &models.User{
		UserID:       userID,
		Email:        userID + "@example.com",
		Name:         "User " + userID,
		PasswordHash: "x",
		Role:         role,
	}
	if err := conn.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func seedOrder(t *testing.T, conn *gorm.DB, orderID string, total float64, paid bool, createdAt time.Time) {
	t.Helper()
	status := enums.PaymentStatusPending
	if paid {
		status = enums.PaymentStatusPaid
	}
	order := &models.Order{
		OrderID:       orderID,
		UserID:        "user_buyer",
		Subtotal:      total,
		Total:         total,
		Status:        enums.OrderStatusPending,
		PaymentStatus: status,
		PaymentMethod: enums.PaymentMethodStripe,
		CreatedAt:     createdAt,
	}
	if err := conn.Create(order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
}

func TestStats(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	seedUser(t, conn, "user_1", enums.RoleCustomer)
	seedUser(t, conn, "user_2", enums.RoleSeller)
	if err := conn.Create(&models.Product{
		ProductID: "prod_a1", SellerID: "user_2", Name: "P", Description: "d",
		Price: 10, CategoryID: "cat_a", Stock: 1,
	}).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}

	seedOrder(t, conn, "ord_a1", 100, true, now.AddDate(0, 0, -1))
	seedOrder(t, conn, "ord_a2", 50, true, now.AddDate(0, 0, -1))
	seedOrder(t, conn, "ord_a3", 30, false, now)
	seedOrder(t, conn, "ord_a4", 70, true, now.AddDate(0, 0, -20))

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalUsers != 2 || stats.TotalProducts != 1 || stats.TotalOrders != 4 {
		t.Fatalf("unexpected counts %+v", stats)
	}
	// Pending orders never count toward revenue.
	if stats.TotalRevenue != 220 {
		t.Fatalf("expected revenue 220, got %v", stats.TotalRevenue)
	}
	if len(stats.RecentOrders) != 4 {
		t.Fatalf("expected 4 recent orders, got %d", len(stats.RecentOrders))
	}
	if len(stats.DailyRevenue) != 7 {
		t.Fatalf("expected 7 buckets, got %d", len(stats.DailyRevenue))
	}
	yesterday := stats.DailyRevenue[5]
	if yesterday.Date != "2026-03-09" || yesterday.Revenue != 150 {
		t.Fatalf("unexpected bucket %+v", yesterday)
	}
	// The 20-day-old paid order falls outside the window.
	var windowTotal float64
	for _, bucket := range stats.DailyRevenue {
		windowTotal += bucket.Revenue
	}
	if windowTotal != 150 {
		t.Fatalf("expected 150 in the trailing week, got %v", windowTotal)
	}
}

func TestUpdateUserRole(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	seedUser(t, conn, "user_3", enums.RoleCustomer)

	user, err := svc.UpdateUserRole(ctx, "user_3", enums.RoleSeller)
	if err != nil {
		t.Fatalf("update role: %v", err)
	}
	if user.Role != enums.RoleSeller {
		t.Fatalf("expected seller, got %s", user.Role)
	}

	if _, err := svc.UpdateUserRole(ctx, "user_3", enums.UserRole("root")); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.UpdateUserRole(ctx, "user_missing", enums.RoleAdmin); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	accounts, err := svc.ListUsers(ctx)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(accounts) != 1 {
		t.Fatalf("expected one account, got %d", len(accounts))
	}
}
