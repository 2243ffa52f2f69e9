package nightscout

import (
	"crypto/sha1"
	"encoding/hex"
)

// HashSecret returns the lowercase hex SHA-1 of secret, the form Nightscout
// expects in the API-SECRET header.
func HashSecret(secret string) string {
	sum := sha1.Sum([]byte(secret))
	return hex.EncodeToString(sum[:])
}
