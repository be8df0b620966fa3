package reviews

import (
	"context"
	"fmt"
	"math"

	"github.com/nexusmarket/backend/pkg/db"
	"github.com/nexusmarket/backend/pkg/db/models"
	pkgerrors "github.com/nexusmarket/backend/pkg/errors"
	"github.com/nexusmarket/backend/pkg/ids"
)

type productStore interface {
	FindProductByID(ctx context.Context, productID string) (*models.Product, error)
	UpdateRatingStats(ctx context.Context, productID string, rating float64, reviewCount int) error
}

// CreateReviewInput holds the validated payload to create a review.
type CreateReviewInput struct {
	ProductID string
	Rating    int
	Comment   string
}

// Service exposes review reads and writes.
type Service interface {
	ListByProduct(ctx context.Context, productID string) ([]models.Review, error)
	Create(ctx context.Context, userID, userName string, input CreateReviewInput) (*models.Review, error)
}

type service struct {
	repo     *Repository
	products productStore
}

// NewService constructs the review service.
func NewService(repo *Repository, products productStore) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("review repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product store required")
	}
	return &service{repo: repo, products: products}, nil
}

func (s *service) ListByProduct(ctx context.Context, productID string) ([]models.Review, error) {
	reviews, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list reviews")
	}
	return reviews, nil
}

func (s *service) Create(ctx context.Context, userID, userName string, input CreateReviewInput) (*models.Review, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}
	if input.ProductID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	if _, err := s.products.FindProductByID(ctx, input.ProductID); err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}

	review := &models.Review{
		ReviewID:  ids.NewReviewID(),
		ProductID: input.ProductID,
		UserID:    userID,
		UserName:  userName,
		Rating:    input.Rating,
		Comment:   input.Comment,
	}
	created, err := s.repo.Create(ctx, review)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product already reviewed")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert review")
	}

	avg, count, err := s.repo.RatingStats(ctx, input.ProductID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: rating stats")
	}
	rounded := math.Round(avg*10) / 10
	if err := s.products.UpdateRatingStats(ctx, input.ProductID, rounded, count); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product rating")
	}

	return created, nil
}
