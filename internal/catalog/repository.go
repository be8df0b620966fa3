package catalog

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/nexusmarket/backend/pkg/db/models"
)

// ListProductsInput captures the browse filters for the product listing.
type ListProductsInput struct {
	CategoryID string
	SellerID   string
	Search     string
	MinPrice   *float64
	MaxPrice   *float64
	MinRating  *float64
	Sort       string
	Limit      int
	Skip       int
}

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Repository wires together catalog persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// CreateCategory inserts a category row.
func (r *Repository) CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error) {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

// ListCategories returns every category ordered by name.
func (r *Repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.WithContext(ctx).Order("name asc").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// CreateProduct inserts a product listing.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// SaveProduct persists the full product row.
func (r *Repository) SaveProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct removes the product row.
func (r *Repository) DeleteProduct(ctx context.Context, productID string) error {
	return r.db.WithContext(ctx).Where("product_id = ?", productID).Delete(&models.Product{}).Error
}

// FindProductByID loads the product without associations.
func (r *Repository) FindProductByID(ctx context.Context, productID string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "product_id = ?", productID).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindProductsByIDs loads products for the given ids, unordered.
func (r *Repository) FindProductsByIDs(ctx context.Context, productIDs []string) ([]models.Product, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	var products []models.Product
	if err := r.db.WithContext(ctx).Where("product_id IN ?", productIDs).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// CountProducts returns the total number of listings.
func (r *Repository) CountProducts(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&count).Error
	return count, err
}

// ListProductIDsBySeller returns the ids of every product owned by the
// seller, without paging.
func (r *Repository) ListProductIDsBySeller(ctx context.Context, sellerID string) ([]string, error) {
	var productIDs []string
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("seller_id = ?", sellerID).
		Pluck("product_id", &productIDs).Error
	if err != nil {
		return nil, err
	}
	return productIDs, nil
}

// ListProducts applies the browse filters and returns a page of products.
func (r *Repository) ListProducts(ctx context.Context, input ListProductsInput) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})

	if input.CategoryID != "" {
		query = query.Where("category_id = ?", input.CategoryID)
	}
	if input.SellerID != "" {
		query = query.Where("seller_id = ?", input.SellerID)
	}
	if input.Search != "" {
		pattern := "%" + strings.ToLower(input.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if input.MinPrice != nil {
		query = query.Where("price >= ?", *input.MinPrice)
	}
	if input.MaxPrice != nil {
		query = query.Where("price <= ?", *input.MaxPrice)
	}
	if input.MinRating != nil {
		query = query.Where("rating >= ?", *input.MinRating)
	}

	query = query.Order(orderClause(input.Sort))

	limit := input.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	query = query.Limit(limit)
	if input.Skip > 0 {
		query = query.Offset(input.Skip)
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func orderClause(sort string) string {
	switch sort {
	case "price_low":
		return "price asc"
	case "price_high":
		return "price desc"
	case "rating":
		return "rating desc"
	default:
		return "created_at desc"
	}
}

// DecrementStock applies a conditional stock decrement that can never push
// stock below zero. It reports whether the decrement was applied and, when
// applied, the post-decrement stock.
func (r *Repository) DecrementStock(ctx context.Context, tx *gorm.DB, productID string, qty int) (bool, int, error) {
	if qty <= 0 {
		return false, 0, fmt.Errorf("qty must be positive, got %d", qty)
	}
	conn := r.db
	if tx != nil {
		conn = tx
	}

	var newStock int
	res := conn.WithContext(ctx).Raw(`
		UPDATE products
		SET stock = stock - ?, updated_at = CURRENT_TIMESTAMP
		WHERE product_id = ? AND stock >= ?
		RETURNING stock
	`, qty, productID, qty).Scan(&newStock)
	if res.Error != nil {
		return false, 0, res.Error
	}
	if res.RowsAffected == 0 {
		return false, 0, nil
	}
	return true, newStock, nil
}

// UpdateRatingStats stores a recomputed rating average and review count.
func (r *Repository) UpdateRatingStats(ctx context.Context, productID string, rating float64, reviewCount int) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("product_id = ?", productID).
		Updates(map[string]any{"rating": rating, "review_count": reviewCount}).
		Error
}
