package ports

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// OfferSnapshot is the live on-chain state of an offer as returned by the
// order contract's offers(taker, index) accessor.
type OfferSnapshot struct {
	State         uint8
	Token         common.Address
	Price         *big.Int
	BuyersCost    *big.Int
	SellersStake  *big.Int
	Timeout       *big.Int
	Uri           string
	AcceptedAt    *big.Int
	MakerCanceled bool
	TakerCanceled bool
}

// OrderInfo is the static on-chain state of an order contract.
type OrderInfo struct {
	Token common.Address
	Maker common.Address
	Uri   string
}

// BookInfo is the current on-chain state of the order-book contract.
type BookInfo struct {
	Fee   *big.Int
	Owner common.Address
}

// ChainReader defines the read-only contract calls the indexer performs.
// ReadOffer failing is an invariant violation and drops the event; the token
// reads fail independently per field and are each tolerated.
type ChainReader interface {
	ReadOffer(ctx context.Context, order, taker common.Address, index uint64) (*OfferSnapshot, error)
	ReadOrder(ctx context.Context, order common.Address) (*OrderInfo, error)
	ReadBook(ctx context.Context, book common.Address) (*BookInfo, error)

	TokenName(ctx context.Context, token common.Address) (string, error)
	TokenSymbol(ctx context.Context, token common.Address) (string, error)
	TokenDecimals(ctx context.Context, token common.Address) (uint8, error)
	TokenTotalSupply(ctx context.Context, token common.Address) (*big.Int, error)
}
