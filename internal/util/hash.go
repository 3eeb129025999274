package util

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"time"
)

func SHA256Hex(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// HashRow builds a stable identity for a normalized row so re-ingesting
// the same sheet does not duplicate it. Keys are sorted for consistency.
func HashRow(table string, ts *time.Time, keys ...string) string {
	sort.Strings(keys)

	parts := []string{table}
	if ts != nil {
		parts = append(parts, ts.Format(time.RFC3339))
	} else {
		parts = append(parts, "")
	}
	parts = append(parts, keys...)

	combined := strings.Join(parts, "|")
	return SHA256Hex([]byte(combined))
}
