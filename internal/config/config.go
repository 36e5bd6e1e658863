package config

import (
	"fmt"
	"os"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	// DatadirKey is the local data directory to store the internal state of the indexer
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// ChainRPCAddrKey is the address of the Ethereum RPC endpoint to read contract state from
	ChainRPCAddrKey = "CHAIN_RPC_ADDR"
	// ContentGatewayAddrKey is the address of the IPFS HTTP gateway used to fetch metadata documents
	ContentGatewayAddrKey = "CONTENT_GATEWAY_ADDR"
	// ContentRequestsPerSecondKey caps the number of requests per second against the content gateway
	ContentRequestsPerSecondKey = "CONTENT_REQUESTS_PER_SECOND"
	// BookAddressKey is the hex address of the order-book contract to index
	BookAddressKey = "BOOK_ADDRESS"
	// StartBlockKey is the first block to scan for marketplace events
	StartBlockKey = "START_BLOCK"
	// PollIntervalKey is the chain polling interval in milliseconds
	PollIntervalKey = "POLL_INTERVAL"

	// DbLocation is the folder inside the datadir containing the entity store
	DbLocation = "db"
)

var vip *viper.Viper
var defaultDatadir = btcutil.AppDataDir("tradepost-indexer", false)

func init() {
	vip = viper.New()
	vip.SetEnvPrefix("TRADEPOST")
	vip.AutomaticEnv()

	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(ChainRPCAddrKey, "http://localhost:8545")
	vip.SetDefault(ContentGatewayAddrKey, "http://localhost:8080")
	vip.SetDefault(ContentRequestsPerSecondKey, 10)
	vip.SetDefault(StartBlockKey, 0)
	vip.SetDefault(PollIntervalKey, 5000)

	if err := validate(); err != nil {
		log.WithError(err).Panic("invalid config")
	}

	if err := initDatadir(); err != nil {
		log.WithError(err).Panic("error while creating datadir")
	}
}

// Validate is a no-op whose call forces the config initialization.
func Validate() {}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetUint64(key string) uint64 {
	return vip.GetUint64(key)
}

// GetDatadir returns the data dir of the indexer.
func GetDatadir() string {
	return GetString(DatadirKey)
}

func validate() error {
	book := vip.GetString(BookAddressKey)
	if book != "" && !common.IsHexAddress(book) {
		return fmt.Errorf("%s is not a valid address: %s", BookAddressKey, book)
	}
	return nil
}

func initDatadir() error {
	return makeDirectoryIfNotExists(GetDatadir())
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
