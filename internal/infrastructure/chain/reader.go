package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sony/gobreaker"
	"github.com/tradepost-network/tradepost-indexer/internal/core/ports"
	"github.com/tradepost-network/tradepost-indexer/pkg/circuitbreaker"
)

const orderABIJSON = `[
	{"name":"offers","type":"function","stateMutability":"view","inputs":[{"name":"taker","type":"address"},{"name":"index","type":"uint256"}],"outputs":[{"name":"state","type":"uint8"},{"name":"token","type":"address"},{"name":"price","type":"uint256"},{"name":"buyersCost","type":"uint256"},{"name":"sellersStake","type":"uint256"},{"name":"timeout","type":"uint256"},{"name":"uri","type":"string"},{"name":"acceptedAt","type":"uint256"},{"name":"makerCanceled","type":"bool"},{"name":"takerCanceled","type":"bool"}]},
	{"name":"token","type":"function","stateMutability":"view","inputs":[],"outputs":[{"type":"address"}]},
	{"name":"maker","type":"function","stateMutability":"view","inputs":[],"outputs":[{"type":"address"}]},
	{"name":"orderURI","type":"function","stateMutability":"view","inputs":[],"outputs":[{"type":"string"}]}
]`

const bookABIJSON = `[
	{"name":"fee","type":"function","stateMutability":"view","inputs":[],"outputs":[{"type":"uint256"}]},
	{"name":"owner","type":"function","stateMutability":"view","inputs":[],"outputs":[{"type":"address"}]}
]`

const erc20ABIJSON = `[
	{"name":"name","type":"function","stateMutability":"view","inputs":[],"outputs":[{"type":"string"}]},
	{"name":"symbol","type":"function","stateMutability":"view","inputs":[],"outputs":[{"type":"string"}]},
	{"name":"decimals","type":"function","stateMutability":"view","inputs":[],"outputs":[{"type":"uint8"}]},
	{"name":"totalSupply","type":"function","stateMutability":"view","inputs":[],"outputs":[{"type":"uint256"}]}
]`

// ContractCaller is the subset of the Ethereum RPC client used by the reader.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

type reader struct {
	client   ContractCaller
	cb       *gobreaker.CircuitBreaker
	orderABI abi.ABI
	bookABI  abi.ABI
	erc20ABI abi.ABI
}

// NewReader returns a ports.ChainReader performing eth_call against the
// marketplace and ERC20 contracts.
func NewReader(client ContractCaller) (ports.ChainReader, error) {
	orderABI, err := abi.JSON(strings.NewReader(orderABIJSON))
	if err != nil {
		return nil, fmt.Errorf("parsing order abi: %w", err)
	}
	bookABI, err := abi.JSON(strings.NewReader(bookABIJSON))
	if err != nil {
		return nil, fmt.Errorf("parsing book abi: %w", err)
	}
	erc20ABI, err := abi.JSON(strings.NewReader(erc20ABIJSON))
	if err != nil {
		return nil, fmt.Errorf("parsing erc20 abi: %w", err)
	}

	return &reader{
		client:   client,
		cb:       circuitbreaker.NewCircuitBreaker("chain-reader"),
		orderABI: orderABI,
		bookABI:  bookABI,
		erc20ABI: erc20ABI,
	}, nil
}

func (r *reader) ReadOffer(
	ctx context.Context, order, taker common.Address, index uint64,
) (*ports.OfferSnapshot, error) {
	out, err := r.call(ctx, order, r.orderABI, "offers", taker, new(big.Int).SetUint64(index))
	if err != nil {
		return nil, err
	}

	return &ports.OfferSnapshot{
		State:         out[0].(uint8),
		Token:         out[1].(common.Address),
		Price:         out[2].(*big.Int),
		BuyersCost:    out[3].(*big.Int),
		SellersStake:  out[4].(*big.Int),
		Timeout:       out[5].(*big.Int),
		Uri:           out[6].(string),
		AcceptedAt:    out[7].(*big.Int),
		MakerCanceled: out[8].(bool),
		TakerCanceled: out[9].(bool),
	}, nil
}

func (r *reader) ReadOrder(
	ctx context.Context, order common.Address,
) (*ports.OrderInfo, error) {
	token, err := r.call(ctx, order, r.orderABI, "token")
	if err != nil {
		return nil, err
	}
	maker, err := r.call(ctx, order, r.orderABI, "maker")
	if err != nil {
		return nil, err
	}
	uri, err := r.call(ctx, order, r.orderABI, "orderURI")
	if err != nil {
		return nil, err
	}

	return &ports.OrderInfo{
		Token: token[0].(common.Address),
		Maker: maker[0].(common.Address),
		Uri:   uri[0].(string),
	}, nil
}

func (r *reader) ReadBook(
	ctx context.Context, book common.Address,
) (*ports.BookInfo, error) {
	fee, err := r.call(ctx, book, r.bookABI, "fee")
	if err != nil {
		return nil, err
	}
	owner, err := r.call(ctx, book, r.bookABI, "owner")
	if err != nil {
		return nil, err
	}

	return &ports.BookInfo{
		Fee:   fee[0].(*big.Int),
		Owner: owner[0].(common.Address),
	}, nil
}

func (r *reader) TokenName(ctx context.Context, token common.Address) (string, error) {
	out, err := r.call(ctx, token, r.erc20ABI, "name")
	if err != nil {
		return "", err
	}
	return out[0].(string), nil
}

func (r *reader) TokenSymbol(ctx context.Context, token common.Address) (string, error) {
	out, err := r.call(ctx, token, r.erc20ABI, "symbol")
	if err != nil {
		return "", err
	}
	return out[0].(string), nil
}

func (r *reader) TokenDecimals(ctx context.Context, token common.Address) (uint8, error) {
	out, err := r.call(ctx, token, r.erc20ABI, "decimals")
	if err != nil {
		return 0, err
	}
	return out[0].(uint8), nil
}

func (r *reader) TokenTotalSupply(ctx context.Context, token common.Address) (*big.Int, error) {
	out, err := r.call(ctx, token, r.erc20ABI, "totalSupply")
	if err != nil {
		return nil, err
	}
	return out[0].(*big.Int), nil
}

func (r *reader) call(
	ctx context.Context,
	to common.Address,
	parsed abi.ABI,
	method string,
	args ...interface{},
) ([]interface{}, error) {
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("packing %s: %w", method, err)
	}

	out, err := r.cb.Execute(func() (interface{}, error) {
		return r.client.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("calling %s on %s: %w", method, to.Hex(), err)
	}

	raw := out.([]byte)
	if len(raw) == 0 {
		return nil, fmt.Errorf("calling %s on %s: empty return, likely reverted", method, to.Hex())
	}

	values, err := parsed.Unpack(method, raw)
	if err != nil {
		return nil, fmt.Errorf("unpacking %s: %w", method, err)
	}
	return values, nil
}
