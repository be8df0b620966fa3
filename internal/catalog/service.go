package catalog

import (
	"context"
	"fmt"

	"github.com/nexusmarket/backend/internal/inventory"
	"github.com/nexusmarket/backend/pkg/db"
	"github.com/nexusmarket/backend/pkg/db/models"
	"github.com/nexusmarket/backend/pkg/enums"
	pkgerrors "github.com/nexusmarket/backend/pkg/errors"
	"github.com/nexusmarket/backend/pkg/ids"
)

// Service exposes catalog browsing and seller product management.
type Service interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, input CreateCategoryInput) (*models.Category, error)

	ListProducts(ctx context.Context, input ListProductsInput) ([]models.Product, error)
	GetProduct(ctx context.Context, productID string) (*models.Product, error)
	CreateProduct(ctx context.Context, sellerID string, input ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, actorID string, role enums.UserRole, productID string, input ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, actorID string, role enums.UserRole, productID string) error
}

// CreateCategoryInput holds the validated payload to create a category.
type CreateCategoryInput struct {
	Name        string
	Description *string
	Image       *string
	ParentID    *string
}

// ProductInput is the full listing payload used for create and replace.
type ProductInput struct {
	Name        string
	Description string
	Price       float64
	CategoryID  string
	Images      []string
	Stock       int
	Tags        []string
}

type service struct {
	repo      *Repository
	broadcast inventory.Broadcaster
}

// NewService constructs the catalog service.
func NewService(repo *Repository, broadcast inventory.Broadcaster) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if broadcast == nil {
		return nil, fmt.Errorf("broadcaster required")
	}
	return &service{repo: repo, broadcast: broadcast}, nil
}

func (s *service) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list categories")
	}
	return categories, nil
}

func (s *service) CreateCategory(ctx context.Context, input CreateCategoryInput) (*models.Category, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name required")
	}
	category := &models.Category{
		CategoryID:  ids.NewCategoryID(),
		Name:        input.Name,
		Description: input.Description,
		Image:       input.Image,
		ParentID:    input.ParentID,
	}
	created, err := s.repo.CreateCategory(ctx, category)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert category")
	}
	return created, nil
}

func (s *service) ListProducts(ctx context.Context, input ListProductsInput) ([]models.Product, error) {
	products, err := s.repo.ListProducts(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list products")
	}
	return products, nil
}

func (s *service) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	product, err := s.repo.FindProductByID(ctx, productID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	return product, nil
}

func (s *service) CreateProduct(ctx context.Context, sellerID string, input ProductInput) (*models.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product := &models.Product{
		ProductID:   ids.NewProductID(),
		SellerID:    sellerID,
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		CategoryID:  input.CategoryID,
		Images:      input.Images,
		Stock:       input.Stock,
		Tags:        input.Tags,
	}
	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
	}

	s.broadcast.Broadcast(ctx, inventory.ProductAdded(created.ProductID, created.Stock))
	return created, nil
}

func (s *service) UpdateProduct(ctx context.Context, actorID string, role enums.UserRole, productID string, input ProductInput) (*models.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product, err := s.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := ensureOwnership(product, actorID, role); err != nil {
		return nil, err
	}

	oldStock := product.Stock
	product.Name = input.Name
	product.Description = input.Description
	product.Price = input.Price
	product.CategoryID = input.CategoryID
	product.Images = input.Images
	product.Stock = input.Stock
	product.Tags = input.Tags

	updated, err := s.repo.SaveProduct(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
	}

	if updated.Stock != oldStock {
		s.broadcast.Broadcast(ctx, inventory.StockChanged(updated.ProductID, updated.Stock))
	}
	return updated, nil
}

func (s *service) DeleteProduct(ctx context.Context, actorID string, role enums.UserRole, productID string) error {
	product, err := s.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	if err := ensureOwnership(product, actorID, role); err != nil {
		return err
	}

	if err := s.repo.DeleteProduct(ctx, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete product")
	}

	s.broadcast.Broadcast(ctx, inventory.ProductDeleted(productID))
	return nil
}

func ensureOwnership(product *models.Product, actorID string, role enums.UserRole) error {
	if product.SellerID == actorID || role == enums.RoleAdmin {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "not authorized for this product")
}

func validateProductInput(input ProductInput) error {
	if input.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name required")
	}
	if input.Price <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	if input.Stock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	if input.CategoryID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "category id required")
	}
	return nil
}
