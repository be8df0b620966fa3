package recommendations

import (
	"context"

	"gorm.io/gorm"

	"github.com/nexusmarket/backend/pkg/db/models"
	"github.com/nexusmarket/backend/pkg/enums"
)

// Repository runs the read-side queries behind product recommendations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListTrending returns the most reviewed products.
func (r *Repository) ListTrending(ctx context.Context, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Order("review_count DESC, created_at DESC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// ListPurchasedProductIDs returns the ids of products the user has paid for.
func (r *Repository) ListPurchasedProductIDs(ctx context.Context, userID string) ([]string, error) {
	var productIDs []string
	err := r.db.WithContext(ctx).
		Model(&models.OrderLine{}).
		Distinct("order_lines.product_id").
		Joins("JOIN orders ON orders.order_id = order_lines.order_id").
		Where("orders.user_id = ? AND orders.payment_status = ?", userID, enums.PaymentStatusPaid).
		Pluck("order_lines.product_id", &productIDs).Error
	if err != nil {
		return nil, err
	}
	return productIDs, nil
}

// ListCategoriesOf returns the distinct categories the given products belong to.
func (r *Repository) ListCategoriesOf(ctx context.Context, productIDs []string) ([]string, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	var categoryIDs []string
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Distinct("category_id").
		Where("product_id IN ?", productIDs).
		Pluck("category_id", &categoryIDs).Error
	if err != nil {
		return nil, err
	}
	return categoryIDs, nil
}

// ListByCategoriesExcluding returns products in the given categories, minus
// the excluded ids, best rated first.
func (r *Repository) ListByCategoriesExcluding(ctx context.Context, categoryIDs, excludeProductIDs []string, limit int) ([]models.Product, error) {
	if len(categoryIDs) == 0 {
		return []models.Product{}, nil
	}
	query := r.db.WithContext(ctx).
		Where("category_id IN ?", categoryIDs).
		Order("rating DESC, review_count DESC").
		Limit(limit)
	if len(excludeProductIDs) > 0 {
		query = query.Where("product_id NOT IN ?", excludeProductIDs)
	}
	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// ListSimilar returns other products in the same category, best rated first.
func (r *Repository) ListSimilar(ctx context.Context, product *models.Product, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("category_id = ? AND product_id <> ?", product.CategoryID, product.ProductID).
		Order("rating DESC, review_count DESC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}
