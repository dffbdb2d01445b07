// Package purchase abstracts the commerce backend's order history.
package purchase

import "context"

type Repository interface {
	// HasPurchased reports whether the user has a completed order
	// containing the given product.
	HasPurchased(ctx context.Context, userID int64, productID int64) (bool, error)
}
