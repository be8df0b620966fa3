// Package ids mints the prefixed public identifiers used across the API
// surface (ord_1a2b3c4d, prod_…). Identifiers are uuid-derived and safe to
// expose to clients.
package ids

import (
	"strings"

	"github.com/google/uuid"
)

func newID(prefix string, length int) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "_" + hex[:length]
}

func NewUserID() string        { return newID("user", 12) }
func NewCategoryID() string    { return newID("cat", 8) }
func NewProductID() string     { return newID("prod", 8) }
func NewReviewID() string      { return newID("rev", 8) }
func NewOrderID() string       { return newID("ord", 8) }
func NewTransactionID() string { return newID("txn", 8) }
