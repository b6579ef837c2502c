package customcal

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// etag is a strong validator over the definition's JSON form.
func etag(def *Definition) (string, error) {
	b, err := json.Marshal(def)
	if err != nil {
		return "", fmt.Errorf("encode definition: %w", err)
	}
	sum := blake2b.Sum256(b)
	return `"` + hex.EncodeToString(sum[:16]) + `"`, nil
}

// matchesETag reports whether an If-None-Match header value names tag.
func matchesETag(header, tag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == tag {
			return true
		}
	}
	return false
}
