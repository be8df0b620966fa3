package sellers

import (
	"context"

	"gorm.io/gorm"

	"github.com/nexusmarket/backend/internal/catalog"
	"github.com/nexusmarket/backend/pkg/db/models"
	"github.com/nexusmarket/backend/pkg/enums"
	pkgerrors "github.com/nexusmarket/backend/pkg/errors"
)

// Stats summarizes a seller's activity across paid orders.
type Stats struct {
	TotalProducts int64   `json:"total_products"`
	TotalStock    int64   `json:"total_stock"`
	TotalOrders   int64   `json:"total_orders"`
	UnitsSold     int64   `json:"units_sold"`
	TotalRevenue  float64 `json:"total_revenue"`
}

// Service backs the seller dashboard.
type Service interface {
	Products(ctx context.Context, sellerID string) ([]models.Product, error)
	Stats(ctx context.Context, sellerID string) (*Stats, error)
}

type service struct {
	db      *gorm.DB
	catalog *catalog.Repository
}

func NewService(conn *gorm.DB, catalogRepo *catalog.Repository) (Service, error) {
	if conn == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "sellers: db is required")
	}
	if catalogRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "sellers: catalog repository is required")
	}
	return &service{db: conn, catalog: catalogRepo}, nil
}

func (s *service) Products(ctx context.Context, sellerID string) ([]models.Product, error) {
	var products []models.Product
	err := s.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Find(&products).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list seller products")
	}
	return products, nil
}

// Stats counts the seller's listings and aggregates their lines across paid
// orders. Revenue covers only this seller's share of each order.
func (s *service) Stats(ctx context.Context, sellerID string) (*Stats, error) {
	stats := &Stats{}

	err := s.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("seller_id = ?", sellerID).
		Count(&stats.TotalProducts).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count products")
	}

	err = s.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("seller_id = ?", sellerID).
		Select("COALESCE(SUM(stock), 0)").
		Scan(&stats.TotalStock).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: sum stock")
	}

	productIDs, err := s.catalog.ListProductIDsBySeller(ctx, sellerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list product ids")
	}
	if len(productIDs) == 0 {
		return stats, nil
	}

	paidLines := s.db.WithContext(ctx).
		Model(&models.OrderLine{}).
		Joins("JOIN orders ON orders.order_id = order_lines.order_id").
		Where("order_lines.product_id IN ? AND orders.payment_status = ?", productIDs, enums.PaymentStatusPaid)

	var agg struct {
		Orders  int64
		Units   int64
		Revenue float64
	}
	err = paidLines.
		Select("COUNT(DISTINCT order_lines.order_id) AS orders, COALESCE(SUM(order_lines.quantity), 0) AS units, COALESCE(SUM(order_lines.price * order_lines.quantity), 0) AS revenue").
		Scan(&agg).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: aggregate sales")
	}

	stats.TotalOrders = agg.Orders
	stats.UnitsSold = agg.Units
	stats.TotalRevenue = agg.Revenue
	return stats, nil
}
