package dbbadger

import (
	"context"
	"errors"

	"github.com/timshannon/badgerhold/v4"
	"github.com/tradepost-network/tradepost-indexer/internal/core/domain"
)

type offerRepositoryImpl struct {
	store *badgerhold.Store
}

// NewOfferRepositoryImpl returns a badger OfferRepository implementation.
func NewOfferRepositoryImpl(store *badgerhold.Store) domain.OfferRepository {
	return &offerRepositoryImpl{store}
}

func (r *offerRepositoryImpl) GetOffer(
	_ context.Context, id string,
) (*domain.Offer, error) {
	var offer domain.Offer
	if err := r.store.Get(id, &offer); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &offer, nil
}

func (r *offerRepositoryImpl) SaveOffer(
	_ context.Context, offer *domain.Offer,
) error {
	return r.store.Upsert(offer.Id, *offer)
}

func (r *offerRepositoryImpl) DeleteOffer(
	_ context.Context, id string,
) error {
	if err := r.store.Delete(id, domain.Offer{}); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil
		}
		return err
	}
	return nil
}

func (r *offerRepositoryImpl) GetOffersForOrder(
	_ context.Context, orderId string,
) ([]*domain.Offer, error) {
	var list []domain.Offer
	query := badgerhold.Where("Order").Eq(orderId)
	if err := r.store.Find(&list, query); err != nil {
		return nil, err
	}

	offers := make([]*domain.Offer, 0, len(list))
	for i := range list {
		offers = append(offers, &list[i])
	}
	return offers, nil
}
