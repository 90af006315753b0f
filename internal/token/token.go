// Package token generates the per-request wikidot_token7 value.
//
// The token is anti-forgery decoration the remote site requires on every
// form post. It is not a secret and carries no security guarantee beyond being
// very likely distinct from the previous one.
package token

import (
	"strings"

	"github.com/google/uuid"
)

// Length of a generated token.
const Length = 12

// Generate returns a fresh lowercase hex token.
func Generate() string {
	// The first 12 hex digits of a v4 UUID precede the version nibble and are random.
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:Length]
}
