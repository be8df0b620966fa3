package admin

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/nexusmarket/backend/internal/catalog"
	"github.com/nexusmarket/backend/internal/orders"
	"github.com/nexusmarket/backend/internal/users"
	"github.com/nexusmarket/backend/pkg/db"
	"github.com/nexusmarket/backend/pkg/db/models"
	"github.com/nexusmarket/backend/pkg/enums"
	pkgerrors "github.com/nexusmarket/backend/pkg/errors"
)

const (
	recentOrderLimit = 5
	revenueDays      = 7
)

// RevenueBucket is one day's paid revenue.
type RevenueBucket struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
}

// Stats is the admin dashboard snapshot.
type Stats struct {
	TotalUsers    int64           `json:"total_users"`
	TotalProducts int64           `json:"total_products"`
	TotalOrders   int64           `json:"total_orders"`
	TotalRevenue  float64         `json:"total_revenue"`
	RecentOrders  []models.Order  `json:"recent_orders"`
	DailyRevenue  []RevenueBucket `json:"daily_revenue"`
}

// Service backs the admin dashboard and account management.
type Service interface {
	Stats(ctx context.Context) (*Stats, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUserRole(ctx context.Context, userID string, role enums.UserRole) (*models.User, error)
}

type service struct {
	db      *gorm.DB
	users   *users.Repository
	catalog *catalog.Repository
	orders  *orders.Repository
	now     func() time.Time
}

func NewService(conn *gorm.DB, userRepo *users.Repository, catalogRepo *catalog.Repository, orderRepo *orders.Repository) (Service, error) {
	switch {
	case conn == nil:
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "admin: db is required")
	case userRepo == nil:
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "admin: user repository is required")
	case catalogRepo == nil:
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "admin: catalog repository is required")
	case orderRepo == nil:
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "admin: order repository is required")
	}
	return &service{
		db:      conn,
		users:   userRepo,
		catalog: catalogRepo,
		orders:  orderRepo,
		now:     time.Now,
	}, nil
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	var err error
	if stats.TotalUsers, err = s.users.CountAll(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count users")
	}
	if stats.TotalProducts, err = s.catalog.CountProducts(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count products")
	}
	if stats.TotalOrders, err = s.orders.CountAll(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count orders")
	}
	if stats.TotalRevenue, err = s.orders.PaidRevenue(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: sum revenue")
	}
	if stats.RecentOrders, err = s.orders.ListAll(ctx, recentOrderLimit); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: recent orders")
	}
	if stats.DailyRevenue, err = s.dailyRevenue(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: daily revenue")
	}
	return stats, nil
}

// dailyRevenue sums paid-order totals per day for the trailing week. Days
// without sales appear with zero revenue.
func (s *service) dailyRevenue(ctx context.Context) ([]RevenueBucket, error) {
	since := s.now().UTC().AddDate(0, 0, -(revenueDays - 1)).Truncate(24 * time.Hour)

	var paid []models.Order
	err := s.db.WithContext(ctx).
		Where("payment_status = ? AND created_at >= ?", enums.PaymentStatusPaid, since).
		Find(&paid).Error
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]float64, revenueDays)
	for _, order := range paid {
		byDay[order.CreatedAt.UTC().Format("2006-01-02")] += order.Total
	}

	buckets := make([]RevenueBucket, 0, revenueDays)
	for i := 0; i < revenueDays; i++ {
		day := since.AddDate(0, 0, i).Format("2006-01-02")
		buckets = append(buckets, RevenueBucket{Date: day, Revenue: byDay[day]})
	}
	return buckets, nil
}

func (s *service) ListUsers(ctx context.Context) ([]models.User, error) {
	accounts, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list users")
	}
	return accounts, nil
}

func (s *service) UpdateUserRole(ctx context.Context, userID string, role enums.UserRole) (*models.User, error) {
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	if err := s.users.UpdateRole(ctx, userID, role); err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update role")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load user")
	}
	return user, nil
}
