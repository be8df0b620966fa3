package models

// All returns every persisted model, in dependency order, for GORM
// auto-migration on SQLite deployments.
func All() []any {
	return []any{
		&User{},
		&Category{},
		&Product{},
		&CartItem{},
		&WishlistItem{},
		&Review{},
		&Order{},
		&OrderLine{},
		&PaymentTransaction{},
		&NewsletterSubscriber{},
	}
}
