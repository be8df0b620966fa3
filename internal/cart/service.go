package cart

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/nexusmarket/backend/pkg/db"
	"github.com/nexusmarket/backend/pkg/db/models"
	pkgerrors "github.com/nexusmarket/backend/pkg/errors"
	"github.com/nexusmarket/backend/pkg/money"
)

type productLoader interface {
	FindProductByID(ctx context.Context, productID string) (*models.Product, error)
}

// ItemView is one cart line enriched with product details.
type ItemView struct {
	ProductID string      `json:"product_id"`
	Quantity  int         `json:"quantity"`
	Product   ProductView `json:"product"`
}

// ProductView is the product summary embedded in a cart line.
type ProductView struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Image *string `json:"image"`
	Stock int     `json:"stock"`
}

// View is the full cart payload returned to clients.
type View struct {
	Items []ItemView `json:"items"`
	Total float64    `json:"total"`
}

// LineInput is one requested cart line.
type LineInput struct {
	ProductID string
	Quantity  int
}

// Service exposes cart reads and mutations.
type Service interface {
	Get(ctx context.Context, userID string) (*View, error)
	Add(ctx context.Context, userID string, input LineInput) error
	Replace(ctx context.Context, userID string, lines []LineInput) error
	RemoveItem(ctx context.Context, userID, productID string) error
	Clear(ctx context.Context, userID string) error
}

type service struct {
	repo     *Repository
	products productLoader
}

// NewService constructs the cart service.
func NewService(repo *Repository, products productLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{repo: repo, products: products}, nil
}

// Get returns the cart with product details. Lines whose product has been
// deleted are skipped rather than failing the whole read.
func (s *service) Get(ctx context.Context, userID string) (*View, error) {
	items, err := s.repo.ListItems(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list cart items")
	}

	view := &View{Items: []ItemView{}}
	total := decimal.Zero
	for _, item := range items {
		product, err := s.products.FindProductByID(ctx, item.ProductID)
		if err != nil {
			if db.IsNotFound(err) {
				continue
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart product")
		}

		var image *string
		if len(product.Images) > 0 {
			img := product.Images[0]
			image = &img
		}
		view.Items = append(view.Items, ItemView{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Product: ProductView{
				Name:  product.Name,
				Price: product.Price,
				Image: image,
				Stock: product.Stock,
			},
		})
		total = total.Add(money.LineTotal(product.Price, item.Quantity))
	}

	view.Total, _ = money.Round2(total).Float64()
	return view, nil
}

// Add merges the requested quantity into the cart, bounded by live stock.
func (s *service) Add(ctx context.Context, userID string, input LineInput) error {
	if input.Quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	product, err := s.products.FindProductByID(ctx, input.ProductID)
	if err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	if product.Stock < input.Quantity {
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
			WithDetails(map[string]any{"product_id": product.ProductID, "stock": product.Stock})
	}

	quantity := input.Quantity
	existing, err := s.repo.FindItem(ctx, userID, input.ProductID)
	if err != nil && !db.IsNotFound(err) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart item")
	}
	if err == nil && existing != nil {
		quantity += existing.Quantity
		if quantity > product.Stock {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
				WithDetails(map[string]any{"product_id": product.ProductID, "stock": product.Stock})
		}
	}

	item := &models.CartItem{UserID: userID, ProductID: input.ProductID, Quantity: quantity}
	if err := s.repo.UpsertItem(ctx, item); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: upsert cart item")
	}
	return nil
}

// Replace swaps the whole cart for the provided lines.
func (s *service) Replace(ctx context.Context, userID string, lines []LineInput) error {
	items := make([]models.CartItem, 0, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}
		items = append(items, models.CartItem{
			UserID:    userID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
	}
	if err := s.repo.ReplaceItems(ctx, userID, items); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: replace cart items")
	}
	return nil
}

func (s *service) RemoveItem(ctx context.Context, userID, productID string) error {
	if err := s.repo.RemoveItem(ctx, userID, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: remove cart item")
	}
	return nil
}

func (s *service) Clear(ctx context.Context, userID string) error {
	if err := s.repo.Clear(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: clear cart")
	}
	return nil
}
