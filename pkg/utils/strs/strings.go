package strs

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// SplitIfNotEmpty splits s by sep. Empty s gives nil, not [""].
func SplitIfNotEmpty(s string, sep string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, sep)
}

// EnsureSuffix appends suffix to s unless s already ends with it.
func EnsureSuffix(s string, suffix string) string {
	if strings.HasSuffix(s, suffix) {
		return s
	}
	return s + suffix
}

// RandomHex returns a random hex string (/[0-9a-f]*/) of length l.
func RandomHex(l uint) (string, error) {
	buffer := make([]byte, (l+1)/2)
	if _, err := rand.Read(buffer); err != nil {
		return "", err
	}
	return hex.EncodeToString(buffer)[:l], nil
}

// TrimPrefixAll removes every leading repetition of prefix from s.
func TrimPrefixAll(s string, prefix string) string {
	if prefix == "" {
		return s
	}
	for strings.HasPrefix(s, prefix) {
		s = strings.TrimPrefix(s, prefix)
	}
	return s
}
