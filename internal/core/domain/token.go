package domain

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Token is the cached ERC20 metadata for a settlement token, keyed by the
// token contract address. It is refreshed on every reference since the total
// supply can legitimately change over time.
type Token struct {
	Id          string
	Address     string
	Name        string
	Symbol      string
	Decimals    int64
	TotalSupply *big.Int
	// TotalSupplyWhole is the supply denormalized to whole units using the
	// cached decimals. The raw amount stays canonical.
	TotalSupplyWhole string
}

// NewToken returns a stub token for the given address. Field reads may fill
// it in later, a stub record is persisted even when every read fails.
func NewToken(address string) *Token {
	return &Token{Id: address, Address: address}
}

// WholeUnits converts a raw token amount to whole units using the cached
// decimals.
func (t *Token) WholeUnits(raw *big.Int) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(raw, 0).Shift(int32(-t.Decimals))
}
