package dbbadger

import (
	"context"
	"errors"

	"github.com/timshannon/badgerhold/v4"
	"github.com/tradepost-network/tradepost-indexer/internal/core/domain"
)

type transitionRepositoryImpl struct {
	store *badgerhold.Store
}

// NewTransitionRepositoryImpl returns a badger TransitionRepository
// implementation.
func NewTransitionRepositoryImpl(store *badgerhold.Store) domain.TransitionRepository {
	return &transitionRepositoryImpl{store}
}

func (r *transitionRepositoryImpl) GetOfferTransition(
	_ context.Context, id string,
) (*domain.OfferTransition, error) {
	var transition domain.OfferTransition
	if err := r.store.Get(id, &transition); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &transition, nil
}

func (r *transitionRepositoryImpl) SaveOfferTransition(
	_ context.Context, transition *domain.OfferTransition,
) error {
	return r.store.Insert(transition.Id, *transition)
}

func (r *transitionRepositoryImpl) GetOrderTransition(
	_ context.Context, id string,
) (*domain.OrderTransition, error) {
	var transition domain.OrderTransition
	if err := r.store.Get(id, &transition); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &transition, nil
}

func (r *transitionRepositoryImpl) SaveOrderTransition(
	_ context.Context, transition *domain.OrderTransition,
) error {
	// Upsert keeps a re-delivered URI change convergent: the record content
	// is derived from the event, so rewriting it is a no-op.
	return r.store.Upsert(transition.Id, *transition)
}
