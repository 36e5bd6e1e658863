package inmemory

import (
	"context"

	"github.com/tradepost-network/tradepost-indexer/internal/core/domain"
)

type orderRepositoryImpl struct {
	store *orderInmemoryStore
}

// NewOrderRepositoryImpl returns a new inmemory OrderRepository implementation.
func NewOrderRepositoryImpl(store *orderInmemoryStore) domain.OrderRepository {
	return &orderRepositoryImpl{store}
}

func (r *orderRepositoryImpl) GetOrder(_ context.Context, id string) (*domain.Order, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	order, ok := r.store.orders[id]
	if !ok {
		return nil, nil
	}
	return cloneOrder(order), nil
}

func (r *orderRepositoryImpl) SaveOrder(_ context.Context, order *domain.Order) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	r.store.orders[order.Id] = cloneOrder(order)
	return nil
}

func (r *orderRepositoryImpl) GetAllOrders(_ context.Context) ([]*domain.Order, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	orders := make([]*domain.Order, 0, len(r.store.orders))
	for _, order := range r.store.orders {
		if order.IsCurrent {
			orders = append(orders, cloneOrder(order))
		}
	}
	return orders, nil
}

// cloneOrder copies the order so callers never share state with the store.
func cloneOrder(order *domain.Order) *domain.Order {
	clone := *order
	clone.Offers = append([]string{}, order.Offers...)
	clone.History = append([]string{}, order.History...)
	clone.AllowedTakers = append([]string{}, order.AllowedTakers...)
	return &clone
}
