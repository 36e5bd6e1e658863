package dbbadger

import (
	"context"
	"errors"

	"github.com/timshannon/badgerhold/v4"
	"github.com/tradepost-network/tradepost-indexer/internal/core/domain"
)

type orderRepositoryImpl struct {
	store *badgerhold.Store
}

// NewOrderRepositoryImpl returns a badger OrderRepository implementation.
func NewOrderRepositoryImpl(store *badgerhold.Store) domain.OrderRepository {
	return &orderRepositoryImpl{store}
}

func (r *orderRepositoryImpl) GetOrder(
	_ context.Context, id string,
) (*domain.Order, error) {
	var order domain.Order
	if err := r.store.Get(id, &order); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepositoryImpl) SaveOrder(
	_ context.Context, order *domain.Order,
) error {
	return r.store.Upsert(order.Id, *order)
}

func (r *orderRepositoryImpl) GetAllOrders(
	_ context.Context,
) ([]*domain.Order, error) {
	var list []domain.Order
	query := badgerhold.Where("IsCurrent").Eq(true)
	if err := r.store.Find(&list, query); err != nil {
		return nil, err
	}

	orders := make([]*domain.Order, 0, len(list))
	for i := range list {
		orders = append(orders, &list[i])
	}
	return orders, nil
}
