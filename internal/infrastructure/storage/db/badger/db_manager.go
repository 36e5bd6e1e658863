package dbbadger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v3"
	"github.com/timshannon/badgerhold/v4"
	"github.com/tradepost-network/tradepost-indexer/internal/core/domain"
	"github.com/tradepost-network/tradepost-indexer/internal/core/ports"
)

// repoManager holds the badgerhold store and the repositories backed by it.
type repoManager struct {
	store *badgerhold.Store

	orderRepository      domain.OrderRepository
	offerRepository      domain.OfferRepository
	transitionRepository domain.TransitionRepository
	tokenRepository      domain.TokenRepository
	bookRepository       domain.BookRepository
}

// NewRepoManager opens (or creates if not exists) the badger store on disk
// under the given data dir and returns a ports.RepoManager backed by it.
func NewRepoManager(baseDbDir string, logger badger.Logger) (ports.RepoManager, error) {
	store, err := createDb(filepath.Join(baseDbDir, "entities"), logger)
	if err != nil {
		return nil, fmt.Errorf("opening entities db: %w", err)
	}

	return &repoManager{
		store:                store,
		orderRepository:      NewOrderRepositoryImpl(store),
		offerRepository:      NewOfferRepositoryImpl(store),
		transitionRepository: NewTransitionRepositoryImpl(store),
		tokenRepository:      NewTokenRepositoryImpl(store),
		bookRepository:       NewBookRepositoryImpl(store),
	}, nil
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

func (d *repoManager) Close() {
	d.store.Close()
}

// JSONEncode is a custom JSON based encoder for badger
func JSONEncode(value interface{}) ([]byte, error) {
	var buff bytes.Buffer

	en := json.NewEncoder(&buff)

	if err := en.Encode(value); err != nil {
		return nil, err
	}

	return buff.Bytes(), nil
}

// JSONDecode is a custom JSON based decoder for badger
func JSONDecode(data []byte, value interface{}) error {
	de := json.NewDecoder(bytes.NewReader(data))
	return de.Decode(value)
}

func createDb(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger

	return badgerhold.Open(badgerhold.Options{
		Encoder:          JSONEncode,
		Decoder:          JSONDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
}
