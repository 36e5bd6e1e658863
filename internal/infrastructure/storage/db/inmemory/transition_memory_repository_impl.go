package inmemory

import (
	"context"

	"github.com/tradepost-network/tradepost-indexer/internal/core/domain"
)

type transitionRepositoryImpl struct {
	store *transitionInmemoryStore
}

// NewTransitionRepositoryImpl returns a new inmemory TransitionRepository
// implementation.
func NewTransitionRepositoryImpl(store *transitionInmemoryStore) domain.TransitionRepository {
	return &transitionRepositoryImpl{store}
}

func (r *transitionRepositoryImpl) GetOfferTransition(
	_ context.Context, id string,
) (*domain.OfferTransition, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	transition, ok := r.store.offerTransitions[id]
	if !ok {
		return nil, nil
	}
	clone := *transition
	return &clone, nil
}

func (r *transitionRepositoryImpl) SaveOfferTransition(
	_ context.Context, transition *domain.OfferTransition,
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	clone := *transition
	r.store.offerTransitions[transition.Id] = &clone
	return nil
}

func (r *transitionRepositoryImpl) GetOrderTransition(
	_ context.Context, id string,
) (*domain.OrderTransition, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	transition, ok := r.store.orderTransitions[id]
	if !ok {
		return nil, nil
	}
	clone := *transition
	return &clone, nil
}

func (r *transitionRepositoryImpl) SaveOrderTransition(
	_ context.Context, transition *domain.OrderTransition,
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	clone := *transition
	r.store.orderTransitions[transition.Id] = &clone
	return nil
}
