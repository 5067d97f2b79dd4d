package domain

import (
	"crypto/md5" //nolint:gosec // fingerprint, not a security boundary
	"encoding/hex"
	"time"
)

// DefaultCacheTTL is how long a cached answer stays valid.
const DefaultCacheTTL = 10 * time.Minute

// fingerprintPrefix namespaces query cache keys in shared key-value stores.
const fingerprintPrefix = "rag:"

// Fingerprint derives the cache key for a query. The text is hashed exactly
// as given: whitespace and case are significant.
func Fingerprint(collection, text string) string {
	sum := md5.Sum([]byte(text)) //nolint:gosec // see import
	return fingerprintPrefix + collection + ":" + hex.EncodeToString(sum[:])
}

// CacheEntry is a serialised answer stored under a fingerprint.
type CacheEntry struct {
	Fingerprint string
	Payload     string
	TTL         time.Duration
}
