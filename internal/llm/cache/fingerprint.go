package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
)

// Fingerprint derives the cache key for an operation and its parameters.
// The serialization is key-sorted, so two maps with the same contents
// always produce the same fingerprint regardless of insertion order.
// Each field is length-prefixed, so parameter contents cannot shift
// field boundaries and collide with a different parameter set.
func Fingerprint(operation string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	writeField(&b, operation)
	for _, k := range keys {
		writeField(&b, k)
		writeField(&b, params[k])
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

func writeField(b *strings.Builder, s string) {
	b.WriteString(strconv.Itoa(len(s)))
	b.WriteByte(':')
	b.WriteString(s)
}
