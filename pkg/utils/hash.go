package utils

import (
	"crypto/md5"
	"encoding/hex"
)

// HashString returns the hex md5 digest of s. Used for stable cache keys,
// not for anything security sensitive.
func HashString(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
