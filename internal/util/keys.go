package util

import (
	"crypto/sha256"
	"fmt"
)

// HashKey folds an unbounded identifier (a scraped URL, say) into a fixed
// width key under prefix: prefix + ":" + first 16 hex chars of its SHA-256.
func HashKey(prefix, id string) string {
	sum := sha256.Sum256([]byte(id))
	return fmt.Sprintf("%s:%x", prefix, sum)[:len(prefix)+1+16]
}
