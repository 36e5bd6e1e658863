package domain

import "context"

// TransitionRepository defines the abstraction for the append-only transition
// records of both offers and orders. Transitions are never updated or deleted.
type TransitionRepository interface {
	// GetOfferTransition returns the transition stored at the given id, or
	// nil if absent.
	GetOfferTransition(ctx context.Context, id string) (*OfferTransition, error)
	// SaveOfferTransition inserts the transition at its id.
	SaveOfferTransition(ctx context.Context, transition *OfferTransition) error
	// GetOrderTransition returns the order transition at the given id, or nil
	// if absent.
	GetOrderTransition(ctx context.Context, id string) (*OrderTransition, error)
	// SaveOrderTransition inserts the order transition at its id.
	SaveOrderTransition(ctx context.Context, transition *OrderTransition) error
}
