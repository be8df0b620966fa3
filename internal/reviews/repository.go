package reviews

import (
	"context"

	"gorm.io/gorm"

	"github.com/nexusmarket/backend/pkg/db/models"
)

const listLimit = 100

// Repository wires review persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a review row. The unique (product_id, user_id) index
// rejects a second review from the same user.
func (r *Repository) Create(ctx context.Context, review *models.Review) (*models.Review, error) {
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}

// ListByProduct returns reviews for the product, newest first.
func (r *Repository) ListByProduct(ctx context.Context, productID string) ([]models.Review, error) {
	var reviews []models.Review
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at desc").
		Limit(listLimit).
		Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

// RatingStats computes the average rating and review count for a product.
func (r *Repository) RatingStats(ctx context.Context, productID string) (float64, int, error) {
	var result struct {
		Avg   float64
		Count int
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("product_id = ?", productID).
		Scan(&result).Error; err != nil {
		return 0, 0, err
	}
	return result.Avg, result.Count, nil
}
