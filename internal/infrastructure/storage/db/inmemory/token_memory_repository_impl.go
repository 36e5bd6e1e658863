package inmemory

import (
	"context"

	"github.com/tradepost-network/tradepost-indexer/internal/core/domain"
)

type tokenRepositoryImpl struct {
	store *tokenInmemoryStore
}

// NewTokenRepositoryImpl returns a new inmemory TokenRepository implementation.
func NewTokenRepositoryImpl(store *tokenInmemoryStore) domain.TokenRepository {
	return &tokenRepositoryImpl{store}
}

func (r *tokenRepositoryImpl) GetToken(_ context.Context, id string) (*domain.Token, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	token, ok := r.store.tokens[id]
	if !ok {
		return nil, nil
	}
	clone := *token
	return &clone, nil
}

func (r *tokenRepositoryImpl) SaveToken(_ context.Context, token *domain.Token) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	clone := *token
	r.store.tokens[token.Id] = &clone
	return nil
}
