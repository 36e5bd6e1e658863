package application

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
	"github.com/tradepost-network/tradepost-indexer/internal/core/domain"
	"github.com/tradepost-network/tradepost-indexer/internal/core/ports"
)

// TokenResolver loads-or-creates the cached Token for a settlement token
// address and refreshes it from the chain on every call. Each of the four
// field reads fails independently: a failed read keeps the prior value and the
// token is persisted regardless, so a stub record exists for later backfill.
type TokenResolver struct {
	chain ports.ChainReader
	repo  domain.TokenRepository
}

func NewTokenResolver(chain ports.ChainReader, repo domain.TokenRepository) *TokenResolver {
	return &TokenResolver{chain: chain, repo: repo}
}

func (r *TokenResolver) Resolve(ctx context.Context, address common.Address) (*domain.Token, error) {
	id := hexAddr(address)

	token, err := r.repo.GetToken(ctx, id)
	if err != nil {
		return nil, err
	}
	if token == nil {
		token = domain.NewToken(id)
	}

	if name, err := r.chain.TokenName(ctx, address); err != nil {
		log.Warnf("unable to get ERC20 name at %s: %s", id, err)
	} else {
		token.Name = name
	}
	if symbol, err := r.chain.TokenSymbol(ctx, address); err != nil {
		log.Warnf("unable to get ERC20 symbol at %s: %s", id, err)
	} else {
		token.Symbol = symbol
	}
	if decimals, err := r.chain.TokenDecimals(ctx, address); err != nil {
		log.Warnf("unable to get ERC20 decimals at %s: %s", id, err)
	} else {
		token.Decimals = int64(decimals)
	}
	if totalSupply, err := r.chain.TokenTotalSupply(ctx, address); err != nil {
		log.Warnf("unable to get ERC20 totalSupply at %s: %s", id, err)
	} else {
		token.TotalSupply = totalSupply
		token.TotalSupplyWhole = token.WholeUnits(totalSupply).String()
	}

	if err := r.repo.SaveToken(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}
