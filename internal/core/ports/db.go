package ports

import (
	"github.com/tradepost-network/tradepost-indexer/internal/core/domain"
)

// RepoManager gives access to the repository of every aggregate kind backed by
// the same store.
type RepoManager interface {
	OrderRepository() domain.OrderRepository
	OfferRepository() domain.OfferRepository
	TransitionRepository() domain.TransitionRepository
	TokenRepository() domain.TokenRepository
	BookRepository() domain.BookRepository

	Close()
}
