package dbbadger

import (
	"context"
	"errors"

	"github.com/timshannon/badgerhold/v4"
	"github.com/tradepost-network/tradepost-indexer/internal/core/domain"
)

type bookRepositoryImpl struct {
	store *badgerhold.Store
}

// NewBookRepositoryImpl returns a badger BookRepository implementation.
func NewBookRepositoryImpl(store *badgerhold.Store) domain.BookRepository {
	return &bookRepositoryImpl{store}
}

func (r *bookRepositoryImpl) GetBook(
	_ context.Context, id string,
) (*domain.Book, error) {
	var book domain.Book
	if err := r.store.Get(id, &book); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &book, nil
}

func (r *bookRepositoryImpl) SaveBook(
	_ context.Context, book *domain.Book,
) error {
	return r.store.Upsert(book.Id, *book)
}
