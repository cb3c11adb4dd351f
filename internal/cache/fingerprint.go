package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint returns a stable, non-reversible identifier for a credential.
func Fingerprint(credential string) string {
	sum := sha256.Sum256([]byte(credential))
	return hex.EncodeToString(sum[:8])
}
