package domain

import "context"

// OfferRepository defines the abstraction for Offer
type OfferRepository interface {
	// GetOffer returns the offer stored at the given id, or nil if absent.
	GetOffer(ctx context.Context, id string) (*Offer, error)
	// SaveOffer inserts or overwrites the offer at its id.
	SaveOffer(ctx context.Context, offer *Offer) error
	// DeleteOffer removes the offer stored at the given id. Used only when
	// rekeying a closed offer to its archival id.
	DeleteOffer(ctx context.Context, id string) error
	// GetOffersForOrder returns every offer owned by the given order.
	GetOffersForOrder(ctx context.Context, orderId string) ([]*Offer, error)
}
