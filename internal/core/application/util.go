package application

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Entities key addresses and hashes by their lowercase hex form.

func hexAddr(a common.Address) string {
	return strings.ToLower(a.Hex())
}

func hexHash(h common.Hash) string {
	return strings.ToLower(h.Hex())
}
