package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	log "github.com/sirupsen/logrus"

	"github.com/tradepost-network/tradepost-indexer/internal/config"
	"github.com/tradepost-network/tradepost-indexer/internal/core/application"
	"github.com/tradepost-network/tradepost-indexer/internal/infrastructure/chain"
	"github.com/tradepost-network/tradepost-indexer/internal/infrastructure/content"
	dbbadger "github.com/tradepost-network/tradepost-indexer/internal/infrastructure/storage/db/badger"
)

func main() {
	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))
	config.Validate()

	book := config.GetString(config.BookAddressKey)
	if !common.IsHexAddress(book) {
		log.Panicf("%s must be set to the order-book contract address", config.BookAddressKey)
	}

	repoManager, err := dbbadger.NewRepoManager(
		filepath.Join(config.GetDatadir(), config.DbLocation), nil,
	)
	if err != nil {
		log.WithError(err).Panic("error opening entity store")
	}
	defer repoManager.Close()

	client, err := ethclient.Dial(config.GetString(config.ChainRPCAddrKey))
	if err != nil {
		log.WithError(err).Panic("error connecting to chain RPC")
	}
	defer client.Close()

	reader, err := chain.NewReader(client)
	if err != nil {
		log.WithError(err).Panic("error creating chain reader")
	}

	contentSvc := content.NewGatewayService(
		config.GetString(config.ContentGatewayAddrKey),
		config.GetInt(config.ContentRequestsPerSecondKey),
	)

	// Seed the watcher with the order contracts indexed so far, new ones are
	// picked up from OrderCreated events.
	orders, err := repoManager.OrderRepository().GetAllOrders(context.Background())
	if err != nil {
		log.WithError(err).Panic("error loading indexed orders")
	}
	knownOrders := make([]common.Address, 0, len(orders))
	for _, order := range orders {
		knownOrders = append(knownOrders, common.HexToAddress(order.Address))
	}

	watcher := chain.NewWatcher(chain.Opts{
		Client:                 client,
		Book:                   common.HexToAddress(book),
		Orders:                 knownOrders,
		StartBlock:             config.GetUint64(config.StartBlockKey),
		IntervalInMilliseconds: config.GetInt(config.PollIntervalKey),
	})

	enricher := application.NewMetadataEnricher(contentSvc)
	tokens := application.NewTokenResolver(reader, repoManager.TokenRepository())
	orderManager := application.NewOrderManager(repoManager, reader, tokens, enricher)
	offerEngine := application.NewOfferEngine(repoManager, reader, tokens, enricher)

	indexerSvc := application.NewIndexerService(watcher, orderManager, offerEngine)
	indexerSvc.Observe()
	defer indexerSvc.StopObserving()

	log.Debug("indexer started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan

	log.Debug("exiting")
}
