package chain

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

var testToken = common.HexToAddress("0xC5fdf4076b8F3A5357c5E395ab970B5B54098Fef")

// fakeCaller answers eth_call with canned return data keyed by the 4-byte
// method selector.
type fakeCaller struct {
	returns map[string][]byte
}

func (f *fakeCaller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	return f.returns[string(msg.Data[:4])], nil
}

func TestReadOfferUnpacksFullSnapshot(t *testing.T) {
	caller := &fakeCaller{returns: map[string][]byte{}}
	readerIface, err := NewReader(caller)
	require.NoError(t, err)
	r := readerIface.(*reader)

	method := r.orderABI.Methods["offers"]
	packed, err := method.Outputs.Pack(
		uint8(1),
		testToken,
		big.NewInt(100),
		big.NewInt(110),
		big.NewInt(50),
		big.NewInt(86400),
		"ipfs://offer-doc",
		big.NewInt(0),
		true,
		false,
	)
	require.NoError(t, err)
	caller.returns[string(method.ID)] = packed

	snapshot, err := r.ReadOffer(context.Background(), testOrder, testTaker, 2)
	require.NoError(t, err)

	require.Equal(t, uint8(1), snapshot.State)
	require.Equal(t, testToken, snapshot.Token)
	require.Equal(t, big.NewInt(100), snapshot.Price)
	require.Equal(t, big.NewInt(110), snapshot.BuyersCost)
	require.Equal(t, big.NewInt(50), snapshot.SellersStake)
	require.Equal(t, big.NewInt(86400), snapshot.Timeout)
	require.Equal(t, "ipfs://offer-doc", snapshot.Uri)
	require.True(t, snapshot.MakerCanceled)
	require.False(t, snapshot.TakerCanceled)
}

func TestEmptyReturnIsReverted(t *testing.T) {
	caller := &fakeCaller{returns: map[string][]byte{}}
	r, err := NewReader(caller)
	require.NoError(t, err)

	_, err = r.ReadOffer(context.Background(), testOrder, testTaker, 0)
	require.Error(t, err)
	require.Contains(t, err.Error(), "reverted")
}

func TestReadOrderCombinesThreeCalls(t *testing.T) {
	caller := &fakeCaller{returns: map[string][]byte{}}
	readerIface, err := NewReader(caller)
	require.NoError(t, err)
	r := readerIface.(*reader)

	tokenOut, err := r.orderABI.Methods["token"].Outputs.Pack(testToken)
	require.NoError(t, err)
	makerOut, err := r.orderABI.Methods["maker"].Outputs.Pack(testTaker)
	require.NoError(t, err)
	uriOut, err := r.orderABI.Methods["orderURI"].Outputs.Pack("ipfs://order-doc")
	require.NoError(t, err)

	caller.returns[string(r.orderABI.Methods["token"].ID)] = tokenOut
	caller.returns[string(r.orderABI.Methods["maker"].ID)] = makerOut
	caller.returns[string(r.orderABI.Methods["orderURI"].ID)] = uriOut

	info, err := r.ReadOrder(context.Background(), testOrder)
	require.NoError(t, err)
	require.Equal(t, testToken, info.Token)
	require.Equal(t, testTaker, info.Maker)
	require.Equal(t, "ipfs://order-doc", info.Uri)
}

func TestTokenFieldReads(t *testing.T) {
	caller := &fakeCaller{returns: map[string][]byte{}}
	readerIface, err := NewReader(caller)
	require.NoError(t, err)
	r := readerIface.(*reader)

	nameOut, err := r.erc20ABI.Methods["name"].Outputs.Pack("Test Dollar")
	require.NoError(t, err)
	decimalsOut, err := r.erc20ABI.Methods["decimals"].Outputs.Pack(uint8(6))
	require.NoError(t, err)

	caller.returns[string(r.erc20ABI.Methods["name"].ID)] = nameOut
	caller.returns[string(r.erc20ABI.Methods["decimals"].ID)] = decimalsOut

	name, err := r.TokenName(context.Background(), testToken)
	require.NoError(t, err)
	require.Equal(t, "Test Dollar", name)

	decimals, err := r.TokenDecimals(context.Background(), testToken)
	require.NoError(t, err)
	require.Equal(t, uint8(6), decimals)

	// symbol has no canned return, the empty reply reads as a revert.
	_, err = r.TokenSymbol(context.Background(), testToken)
	require.Error(t, err)
}
