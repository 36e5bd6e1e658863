package inmemory

import (
	"context"

	"github.com/tradepost-network/tradepost-indexer/internal/core/domain"
)

type offerRepositoryImpl struct {
	store *offerInmemoryStore
}

// NewOfferRepositoryImpl returns a new inmemory OfferRepository implementation.
func NewOfferRepositoryImpl(store *offerInmemoryStore) domain.OfferRepository {
	return &offerRepositoryImpl{store}
}

func (r *offerRepositoryImpl) GetOffer(_ context.Context, id string) (*domain.Offer, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	offer, ok := r.store.offers[id]
	if !ok {
		return nil, nil
	}
	return cloneOffer(offer), nil
}

func (r *offerRepositoryImpl) SaveOffer(_ context.Context, offer *domain.Offer) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	r.store.offers[offer.Id] = cloneOffer(offer)
	return nil
}

func (r *offerRepositoryImpl) DeleteOffer(_ context.Context, id string) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	delete(r.store.offers, id)
	return nil
}

func (r *offerRepositoryImpl) GetOffersForOrder(
	_ context.Context, orderId string,
) ([]*domain.Offer, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	offers := make([]*domain.Offer, 0)
	for _, offer := range r.store.offers {
		if offer.Order == orderId {
			offers = append(offers, cloneOffer(offer))
		}
	}
	return offers, nil
}

// cloneOffer copies the offer so callers never share state with the store.
func cloneOffer(offer *domain.Offer) *domain.Offer {
	clone := *offer
	clone.History = append([]string{}, offer.History...)
	return &clone
}
