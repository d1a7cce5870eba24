package lead

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// BuildUniqueKey derives the content-hash identity of a record from
// its normalized distinguishing fields. Phone-less rows extend the
// hashed material with address and representative name so they still
// get a (weaker) stable identity.
func BuildUniqueKey(rec NormalizedRecord) string {
	parts := []string{
		NormalizeHeader(rec.Source),
		NormalizeHeader(rec.City),
		NormalizeHeader(rec.EstablishmentName),
		NormalizeHeader(rec.PhoneNorm),
	}
	if parts[len(parts)-1] == "" {
		parts = append(parts, NormalizeHeader(rec.Address), NormalizeHeader(rec.RepresentativeName))
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// SuffixKey disambiguates a colliding unique key by appending the
// record's own identifier, clamped to the 64-character key budget.
func SuffixKey(key string, id int64) string {
	suffixed := fmt.Sprintf("%.56s%08d", key, id)
	if len(suffixed) > 64 {
		suffixed = suffixed[:64]
	}
	return suffixed
}
