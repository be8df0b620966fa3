package wishlist

import (
	"context"

	"github.com/nexusmarket/backend/pkg/db"
	"github.com/nexusmarket/backend/pkg/db/models"
	pkgerrors "github.com/nexusmarket/backend/pkg/errors"
)

type productLoader interface {
	FindProductByID(ctx context.Context, productID string) (*models.Product, error)
	FindProductsByIDs(ctx context.Context, productIDs []string) ([]models.Product, error)
}

// View is the wishlist payload returned to clients.
type View struct {
	Items []models.Product `json:"items"`
}

// Service manages per-user wishlists.
type Service interface {
	Get(ctx context.Context, userID string) (*View, error)
	Add(ctx context.Context, userID, productID string) error
	Remove(ctx context.Context, userID, productID string) error
}

type service struct {
	repo     *Repository
	products productLoader
}

func NewService(repo *Repository, products productLoader) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "wishlist: repository is required")
	}
	if products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "wishlist: product loader is required")
	}
	return &service{repo: repo, products: products}, nil
}

// Get returns the user's saved products, newest first. Products removed from
// the catalog after being saved are skipped.
func (s *service) Get(ctx context.Context, userID string) (*View, error) {
	items, err := s.repo.ListItems(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list wishlist")
	}

	view := &View{Items: []models.Product{}}
	if len(items) == 0 {
		return view, nil
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.products.FindProductsByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load wishlist products")
	}
	byID := make(map[string]models.Product, len(products))
	for _, product := range products {
		byID[product.ProductID] = product
	}
	for _, item := range items {
		if product, ok := byID[item.ProductID]; ok {
			view.Items = append(view.Items, product)
		}
	}
	return view, nil
}

func (s *service) Add(ctx context.Context, userID, productID string) error {
	if productID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product_id is required")
	}
	if _, err := s.products.FindProductByID(ctx, productID); err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}

	item := &models.WishlistItem{UserID: userID, ProductID: productID}
	if err := s.repo.AddItem(ctx, item); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: add wishlist item")
	}
	return nil
}

func (s *service) Remove(ctx context.Context, userID, productID string) error {
	if err := s.repo.RemoveItem(ctx, userID, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: remove wishlist item")
	}
	return nil
}
