package seed

import (
	"context"

	"gorm.io/gorm"

	"github.com/nexusmarket/backend/pkg/config"
	"github.com/nexusmarket/backend/pkg/db/models"
	"github.com/nexusmarket/backend/pkg/enums"
	pkgerrors "github.com/nexusmarket/backend/pkg/errors"
	"github.com/nexusmarket/backend/pkg/ids"
	"github.com/nexusmarket/backend/pkg/logger"
	"github.com/nexusmarket/backend/pkg/security"
)

const demoPassword = "password123"

// Service loads demo data for development. It refuses to touch a database
// that already has users.
type Service interface {
	Run(ctx context.Context) (bool, error)
}

type service struct {
	db    *gorm.DB
	pwCfg config.PasswordConfig
	logg  *logger.Logger
}

func NewService(conn *gorm.DB, pwCfg config.PasswordConfig, logg *logger.Logger) (Service, error) {
	if conn == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "seed: db is required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "seed: logger is required")
	}
	return &service{db: conn, pwCfg: pwCfg, logg: logg}, nil
}

// Run populates demo accounts, categories, and products. It reports whether
// anything was written; an already-populated database is left untouched.
func (s *service) Run(ctx context.Context) (bool, error) {
	var userCount int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&userCount).Error; err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count users")
	}
	if userCount > 0 {
		return false, nil
	}

	hash, err := security.HashPassword(demoPassword, s.pwCfg)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash demo password")
	}

	sellerID := ids.NewUserID()
	users := []models.User{
		{UserID: ids.NewUserID(), Email: "admin@nexusmarket.dev", Name: "Demo Admin", PasswordHash: hash, Role: enums.RoleAdmin},
		{UserID: sellerID, Email: "seller@nexusmarket.dev", Name: "Demo Seller", PasswordHash: hash, Role: enums.RoleSeller},
		{UserID: ids.NewUserID(), Email: "customer@nexusmarket.dev", Name: "Demo Customer", PasswordHash: hash, Role: enums.RoleCustomer},
	}

	electronics := models.Category{CategoryID: ids.NewCategoryID(), Name: "Electronics"}
	home := models.Category{CategoryID: ids.NewCategoryID(), Name: "Home & Kitchen"}
	books := models.Category{CategoryID: ids.NewCategoryID(), Name: "Books"}

	products := []models.Product{
		{
			ProductID: ids.NewProductID(), SellerID: sellerID, Name: "Wireless Headphones",
			Description: "Over-ear headphones with noise cancellation.",
			Price:       79.99, CategoryID: electronics.CategoryID, Stock: 25,
			Tags: []string{"audio", "wireless"},
		},
		{
			ProductID: ids.NewProductID(), SellerID: sellerID, Name: "Smart Speaker",
			Description: "Voice-controlled speaker for the living room.",
			Price:       49.50, CategoryID: electronics.CategoryID, Stock: 40,
			Tags: []string{"audio", "smart-home"},
		},
		{
			ProductID: ids.NewProductID(), SellerID: sellerID, Name: "Cast Iron Skillet",
			Description: "Pre-seasoned 12 inch skillet.",
			Price:       34.00, CategoryID: home.CategoryID, Stock: 15,
			Tags: []string{"kitchen"},
		},
		{
			ProductID: ids.NewProductID(), SellerID: sellerID, Name: "French Press",
			Description: "Eight cup borosilicate glass press.",
			Price:       24.99, CategoryID: home.CategoryID, Stock: 30,
			Tags: []string{"kitchen", "coffee"},
		},
		{
			ProductID: ids.NewProductID(), SellerID: sellerID, Name: "The Pragmatic Shopper",
			Description: "A field guide to online marketplaces.",
			Price:       18.00, CategoryID: books.CategoryID, Stock: 50,
			Tags: []string{"paperback"},
		},
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&users).Error; err != nil {
			return err
		}
		if err := tx.Create(&[]models.Category{electronics, home, books}).Error; err != nil {
			return err
		}
		return tx.Create(&products).Error
	})
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: write seed data")
	}

	s.logg.Info(ctx, "demo data seeded")
	return true, nil
}
