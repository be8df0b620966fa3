package catalog

import (
	"context"
	"sync"
	"testing"

	"github.com/nexusmarket/backend/pkg/db/models"
)

func TestListProductsFilters(t *testing.T) {
	t.Parallel()

	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	seedProduct(t, conn, &models.Product{ProductID: "prod_a", Name: "Wireless Headphones", CategoryID: "cat_audio", Price: 120, Rating: 4.5})
	seedProduct(t, conn, &models.Product{ProductID: "prod_b", Name: "Desk Lamp", CategoryID: "cat_home", Price: 30, Rating: 3.0})
	seedProduct(t, conn, &models.Product{ProductID: "prod_c", Name: "USB Cable", Description: "wireless charging cable", CategoryID: "cat_audio", Price: 10, Rating: 4.0})

	byCategory, err := repo.ListProducts(ctx, ListProductsInput{CategoryID: "cat_audio"})
	if err != nil {
		t.Fatalf("list by category: %v", err)
	}
	if len(byCategory) != 2 {
		t.Fatalf("expected 2 audio products, got %d", len(byCategory))
	}

	bySearch, err := repo.ListProducts(ctx, ListProductsInput{Search: "WIRELESS"})
	if err != nil {
		t.Fatalf("list by search: %v", err)
	}
	if len(bySearch) != 2 {
		t.Fatalf("expected 2 search matches, got %d", len(bySearch))
	}

	min := 25.0
	max := 125.0
	byPrice, err := repo.ListProducts(ctx, ListProductsInput{MinPrice: &min, MaxPrice: &max, Sort: "price_low"})
	if err != nil {
		t.Fatalf("list by price: %v", err)
	}
	if len(byPrice) != 2 {
		t.Fatalf("expected 2 price matches, got %d", len(byPrice))
	}
	if byPrice[0].ProductID != "prod_b" || byPrice[1].ProductID != "prod_a" {
		t.Fatalf("unexpected price_low ordering: %s, %s", byPrice[0].ProductID, byPrice[1].ProductID)
	}

	minRating := 4.0
	byRating, err := repo.ListProducts(ctx, ListProductsInput{MinRating: &minRating, Sort: "rating"})
	if err != nil {
		t.Fatalf("list by rating: %v", err)
	}
	if len(byRating) != 2 || byRating[0].ProductID != "prod_a" {
		t.Fatalf("unexpected rating result: %+v", byRating)
	}
}

func TestListProductsPagination(t *testing.T) {
	t.Parallel()

	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		seedProduct(t, conn, &models.Product{Price: float64(10 + i)})
	}

	page, err := repo.ListProducts(ctx, ListProductsInput{Limit: 2, Skip: 2, Sort: "price_low"})
	if err != nil {
		t.Fatalf("list page: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected page of 2, got %d", len(page))
	}
	if page[0].Price != 12 {
		t.Fatalf("expected skip to apply, first price %f", page[0].Price)
	}
}

func TestDecrementStock(t *testing.T) {
	t.Parallel()

	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	product := seedProduct(t, conn, &models.Product{Stock: 5})

	applied, newStock, err := repo.DecrementStock(ctx, nil, product.ProductID, 3)
	if err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if !applied || newStock != 2 {
		t.Fatalf("expected applied with stock 2, got applied=%v stock=%d", applied, newStock)
	}

	// More than remains: not applied, stock untouched.
	applied, _, err = repo.DecrementStock(ctx, nil, product.ProductID, 3)
	if err != nil {
		t.Fatalf("decrement past stock: %v", err)
	}
	if applied {
		t.Fatal("expected decrement past stock to be refused")
	}

	var current models.Product
	if err := conn.First(&current, "product_id = ?", product.ProductID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if current.Stock != 2 {
		t.Fatalf("expected stock unchanged at 2, got %d", current.Stock)
	}

	if _, _, err := repo.DecrementStock(ctx, nil, product.ProductID, 0); err == nil {
		t.Fatal("expected error for non-positive qty")
	}
}

func TestDecrementStockNeverBelowZeroUnderContention(t *testing.T) {
	t.Parallel()

	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	product := seedProduct(t, conn, &models.Product{Stock: 10})

	const workers = 8
	var wg sync.WaitGroup
	appliedCount := make(chan bool, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			applied, _, err := repo.DecrementStock(ctx, nil, product.ProductID, 3)
			if err != nil {
				t.Errorf("decrement: %v", err)
				return
			}
			appliedCount <- applied
		}()
	}
	wg.Wait()
	close(appliedCount)

	wins := 0
	for applied := range appliedCount {
		if applied {
			wins++
		}
	}
	// 10 units at 3 per request allows exactly 3 wins.
	if wins != 3 {
		t.Fatalf("expected 3 applied decrements, got %d", wins)
	}

	var current models.Product
	if err := conn.First(&current, "product_id = ?", product.ProductID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if current.Stock != 1 {
		t.Fatalf("expected stock 1, got %d", current.Stock)
	}
}

func TestUpdateRatingStats(t *testing.T) {
	t.Parallel()

	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	product := seedProduct(t, conn, &models.Product{})

	if err := repo.UpdateRatingStats(ctx, product.ProductID, 4.3, 12); err != nil {
		t.Fatalf("update rating: %v", err)
	}

	var current models.Product
	if err := conn.First(&current, "product_id = ?", product.ProductID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if current.Rating != 4.3 || current.ReviewCount != 12 {
		t.Fatalf("unexpected rating stats: %+v", current)
	}
}
