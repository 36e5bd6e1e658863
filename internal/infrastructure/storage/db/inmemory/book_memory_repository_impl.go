package inmemory

import (
	"context"

	"github.com/tradepost-network/tradepost-indexer/internal/core/domain"
)

type bookRepositoryImpl struct {
	store *bookInmemoryStore
}

// NewBookRepositoryImpl returns a new inmemory BookRepository implementation.
func NewBookRepositoryImpl(store *bookInmemoryStore) domain.BookRepository {
	return &bookRepositoryImpl{store}
}

func (r *bookRepositoryImpl) GetBook(_ context.Context, id string) (*domain.Book, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	book, ok := r.store.books[id]
	if !ok {
		return nil, nil
	}
	clone := *book
	clone.Orders = append([]string{}, book.Orders...)
	return &clone, nil
}

func (r *bookRepositoryImpl) SaveBook(_ context.Context, book *domain.Book) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	clone := *book
	clone.Orders = append([]string{}, book.Orders...)
	r.store.books[book.Id] = &clone
	return nil
}
