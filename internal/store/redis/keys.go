package redis

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/MrSnakeDoc/promoavail/internal/textnorm"
)

const (
	// KeyProducts is the list of product JSON documents, in catalog order
	KeyProducts = "promoavail:catalog:products"
	// KeySynonyms is the list of synonym JSON documents, in catalog order
	KeySynonyms = "promoavail:catalog:synonyms"
	// KeyMeta is the hash describing the mirrored snapshot
	KeyMeta = "promoavail:catalog:meta"
	// KeyPrefixExtraction is the prefix for cached model extractions
	KeyPrefixExtraction = "promoavail:extract:"
)

// ExtractionKey returns the cache key for a message. Messages that only differ in case
// or spacing share a key.
func ExtractionKey(kind, text string) string {
	sum := sha256.Sum256([]byte(textnorm.Normalize(text)))
	return KeyPrefixExtraction + kind + ":" + hex.EncodeToString(sum[:])
}
