package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/campaignstack/ai-gateway/internal/gateway/providers"
)

// HashMessages computes the cache key digest for an ordered message list.
// The canonical form is the JSON encoding of the list: field order is fixed
// by the struct definition and strings are escaped, so identical content and
// ordering always produce the same digest across processes and restarts.
func HashMessages(messages []providers.Message) string {
	canonical, err := json.Marshal(messages)
	if err != nil {
		// []Message cannot fail to marshal; keep the signature side-effect free.
		canonical = []byte{}
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])
}
