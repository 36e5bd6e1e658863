package dbbadger

import (
	"context"
	"errors"

	"github.com/timshannon/badgerhold/v4"
	"github.com/tradepost-network/tradepost-indexer/internal/core/domain"
)

type tokenRepositoryImpl struct {
	store *badgerhold.Store
}

// NewTokenRepositoryImpl returns a badger TokenRepository implementation.
func NewTokenRepositoryImpl(store *badgerhold.Store) domain.TokenRepository {
	return &tokenRepositoryImpl{store}
}

func (r *tokenRepositoryImpl) GetToken(
	_ context.Context, id string,
) (*domain.Token, error) {
	var token domain.Token
	if err := r.store.Get(id, &token); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &token, nil
}

func (r *tokenRepositoryImpl) SaveToken(
	_ context.Context, token *domain.Token,
) error {
	return r.store.Upsert(token.Id, *token)
}
