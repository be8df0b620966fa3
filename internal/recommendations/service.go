package recommendations

import (
	"context"

	"github.com/nexusmarket/backend/pkg/db"
	"github.com/nexusmarket/backend/pkg/db/models"
	pkgerrors "github.com/nexusmarket/backend/pkg/errors"
	"github.com/nexusmarket/backend/pkg/logger"
)

const (
	trendingLimit = 8
	similarLimit  = 4
)

type productLoader interface {
	FindProductByID(ctx context.Context, productID string) (*models.Product, error)
}

// Copywriter produces a short AI blurb for a set of suggested products.
// Implementations must be best-effort; the caller drops the blurb on error.
type Copywriter interface {
	ProductPitch(ctx context.Context, product *models.Product, similar []models.Product) (string, error)
}

// SimilarResult pairs similar products with an optional AI pitch.
type SimilarResult struct {
	Products []models.Product `json:"products"`
	Pitch    *string          `json:"pitch,omitempty"`
}

// Service surfaces trending, personalized, and similar-product suggestions.
type Service interface {
	Trending(ctx context.Context) ([]models.Product, error)
	ForUser(ctx context.Context, userID string) ([]models.Product, error)
	Similar(ctx context.Context, productID string) (*SimilarResult, error)
}

type service struct {
	repo     *Repository
	products productLoader
	copy     Copywriter
	logg     *logger.Logger
}

// NewService wires the recommendation queries. The copywriter is optional;
// without one, Similar returns products with no pitch.
func NewService(repo *Repository, products productLoader, copywriter Copywriter, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "recommendations: repository is required")
	}
	if products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "recommendations: product loader is required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "recommendations: logger is required")
	}
	return &service{repo: repo, products: products, copy: copywriter, logg: logg}, nil
}

func (s *service) Trending(ctx context.Context) ([]models.Product, error) {
	products, err := s.repo.ListTrending(ctx, trendingLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list trending")
	}
	return products, nil
}

// ForUser suggests products from the categories the user has bought in,
// excluding what they already own. Users with no purchase history fall back
// to trending.
func (s *service) ForUser(ctx context.Context, userID string) ([]models.Product, error) {
	purchased, err := s.repo.ListPurchasedProductIDs(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list purchases")
	}
	if len(purchased) == 0 {
		return s.Trending(ctx)
	}

	categories, err := s.repo.ListCategoriesOf(ctx, purchased)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list purchase categories")
	}
	products, err := s.repo.ListByCategoriesExcluding(ctx, categories, purchased, trendingLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list personalized")
	}
	if len(products) == 0 {
		return s.Trending(ctx)
	}
	return products, nil
}

func (s *service) Similar(ctx context.Context, productID string) (*SimilarResult, error) {
	product, err := s.products.FindProductByID(ctx, productID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}

	products, err := s.repo.ListSimilar(ctx, product, similarLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list similar")
	}

	result := &SimilarResult{Products: products}
	if s.copy != nil && len(products) > 0 {
		pitch, err := s.copy.ProductPitch(ctx, product, products)
		if err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "product_id", productID), "pitch generation failed")
		} else if pitch != "" {
			result.Pitch = &pitch
		}
	}
	return result, nil
}
