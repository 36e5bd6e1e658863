package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
	"github.com/tradepost-network/tradepost-indexer/internal/core/domain"
	"github.com/tradepost-network/tradepost-indexer/internal/core/ports"
)

const contentScheme = "ipfs://"

// MetadataEnricher retrieves content-addressed JSON documents and copies a
// fixed set of optional fields onto aggregates. Metadata is user-supplied and
// untrusted, so nothing in here is ever fatal: retrieval and parse failures
// are recorded on the aggregate's error field and every field falls back to an
// explicit empty value when absent or of the wrong kind.
type MetadataEnricher struct {
	content ports.ContentStore
}

func NewMetadataEnricher(content ports.ContentStore) *MetadataEnricher {
	return &MetadataEnricher{content: content}
}

// EnrichOrder fills the order's descriptive fields from the document at uri.
func (e *MetadataEnricher) EnrichOrder(ctx context.Context, order *domain.Order, uri string) {
	doc, cid, err := e.fetchDocument(ctx, uri)
	if err != nil {
		order.Error = err.Error()
		return
	}

	order.Title = doc.stringField(cid, "title")
	order.Description = doc.stringField(cid, "description")
	order.PrimaryImage = doc.stringField(cid, "primaryImage")
	order.EncryptionPublicKey = doc.stringField(cid, "encryptionPublicKey")
	order.PriceSuggested = doc.stringField(cid, "priceSuggested")
	order.StakeSuggested = doc.stringField(cid, "stakeSuggested")
	order.AllowedTakers = doc.addressList(cid, "allowedTakers")

	if schemaUri := doc.stringField(cid, "offerSchema"); schemaUri != "" {
		schemaCid := strings.TrimPrefix(schemaUri, contentScheme)
		schema, err := e.content.Fetch(ctx, schemaCid)
		if err != nil {
			order.Error = fmt.Sprintf("offer schema not found for %s", schemaCid)
			log.Warnf("unable to get data at %s: %s", schemaCid, err)
		} else {
			order.OfferSchema = string(schema)
			order.OfferSchemaUri = schemaUri
		}
	}
}

// EnrichOffer fills the offer's message envelope from the document at uri.
func (e *MetadataEnricher) EnrichOffer(ctx context.Context, offer *domain.Offer, uri string) {
	doc, cid, err := e.fetchDocument(ctx, uri)
	if err != nil {
		offer.Error = err.Error()
		return
	}

	offer.MessagePublicKey = doc.stringField(cid, "publicKey")
	offer.MessageNonce = doc.stringField(cid, "nonce")
	offer.Message = doc.stringField(cid, "message")
}

func (e *MetadataEnricher) fetchDocument(ctx context.Context, uri string) (jsonDoc, string, error) {
	cid := strings.TrimPrefix(uri, contentScheme)

	data, err := e.content.Fetch(ctx, cid)
	if err != nil {
		log.Warnf("unable to get data at %s: %s", cid, err)
		return nil, cid, fmt.Errorf("%w: %s", domain.ErrContentUnavailable, cid)
	}

	var doc jsonDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Warnf("unable to parse data at %s: %s", cid, err)
		return nil, cid, fmt.Errorf("%w: %s", domain.ErrContentMalformed, cid)
	}

	log.Debugf("parsing data at %s", cid)
	return doc, cid, nil
}

// jsonDoc is a parsed metadata document. Fields are extracted one by one with
// a typed lookup so a single wrong entry never poisons the rest.
type jsonDoc map[string]json.RawMessage

func (d jsonDoc) stringField(cid, key string) string {
	raw, ok := d[key]
	if !ok {
		return ""
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		log.Warnf("metadata field %s at %s is not a string", key, cid)
		return ""
	}
	return value
}

// addressList extracts a list of hex addresses. Elements are decoded
// independently, one bad entry is skipped without discarding the others.
func (d jsonDoc) addressList(cid, key string) []string {
	raw, ok := d[key]
	if !ok {
		return []string{}
	}
	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		log.Warnf("metadata field %s at %s is not a list", key, cid)
		return []string{}
	}

	addresses := make([]string, 0, len(elements))
	for i, element := range elements {
		var value string
		if err := json.Unmarshal(element, &value); err != nil {
			log.Warnf("metadata field %s[%d] at %s is not a string", key, i, cid)
			continue
		}
		if !common.IsHexAddress(value) {
			log.Warnf("metadata field %s[%d] at %s is not an address", key, i, cid)
			continue
		}
		addresses = append(addresses, hexAddr(common.HexToAddress(value)))
	}
	return addresses
}
