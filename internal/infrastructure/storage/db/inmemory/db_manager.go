package inmemory

import (
	"sync"

	"github.com/tradepost-network/tradepost-indexer/internal/core/domain"
	"github.com/tradepost-network/tradepost-indexer/internal/core/ports"
)

type orderInmemoryStore struct {
	locker *sync.Mutex
	orders map[string]*domain.Order
}

type offerInmemoryStore struct {
	locker *sync.Mutex
	offers map[string]*domain.Offer
}

type transitionInmemoryStore struct {
	locker           *sync.Mutex
	offerTransitions map[string]*domain.OfferTransition
	orderTransitions map[string]*domain.OrderTransition
}

type tokenInmemoryStore struct {
	locker *sync.Mutex
	tokens map[string]*domain.Token
}

type bookInmemoryStore struct {
	locker *sync.Mutex
	books  map[string]*domain.Book
}

// repoManager holds the in memory repositories. Used for testing and as a
// throwaway backend.
type repoManager struct {
	orderRepository      domain.OrderRepository
	offerRepository      domain.OfferRepository
	transitionRepository domain.TransitionRepository
	tokenRepository      domain.TokenRepository
	bookRepository       domain.BookRepository
}

// NewRepoManager returns a ports.RepoManager backed by in memory maps.
func NewRepoManager() ports.RepoManager {
	return &repoManager{
		orderRepository: NewOrderRepositoryImpl(&orderInmemoryStore{
			locker: &sync.Mutex{},
			orders: map[string]*domain.Order{},
		}),
		offerRepository: NewOfferRepositoryImpl(&offerInmemoryStore{
			locker: &sync.Mutex{},
			offers: map[string]*domain.Offer{},
		}),
		transitionRepository: NewTransitionRepositoryImpl(&transitionInmemoryStore{
			locker:           &sync.Mutex{},
			offerTransitions: map[string]*domain.OfferTransition{},
			orderTransitions: map[string]*domain.OrderTransition{},
		}),
		tokenRepository: NewTokenRepositoryImpl(&tokenInmemoryStore{
			locker: &sync.Mutex{},
			tokens: map[string]*domain.Token{},
		}),
		bookRepository: NewBookRepositoryImpl(&bookInmemoryStore{
			locker: &sync.Mutex{},
			books:  map[string]*domain.Book{},
		}),
	}
}

func (d *repoManager) OrderRepository() domain.OrderRepository {
	return d.orderRepository
}

func (d *repoManager) OfferRepository() domain.OfferRepository {
	return d.offerRepository
}

func (d *repoManager) TransitionRepository() domain.TransitionRepository {
	return d.transitionRepository
}

func (d *repoManager) TokenRepository() domain.TokenRepository {
	return d.tokenRepository
}

func (d *repoManager) BookRepository() domain.BookRepository {
	return d.bookRepository
}

func (d *repoManager) Close() {}
