package domain

import "context"

// OrderRepository defines the abstraction for Order
type OrderRepository interface {
	// GetOrder returns the order stored at the given id, or nil if absent.
	GetOrder(ctx context.Context, id string) (*Order, error)
	// SaveOrder inserts or overwrites the order at its id.
	SaveOrder(ctx context.Context, order *Order) error
	// GetAllOrders returns every live order.
	GetAllOrders(ctx context.Context) ([]*Order, error)
}
