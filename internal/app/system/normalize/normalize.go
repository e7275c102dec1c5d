// Package normalize canonicalizes identifiers before they are stored or
// compared. Invitation matching depends on every email passing through
// Email exactly once on the way in and on the way out.
package normalize

import (
	"strings"

	"github.com/dalemusser/waffle/pantry/text"
)

// Email returns the canonical form of an email address: trimmed and
// case-folded. Group invitation arrays only ever hold canonical emails.
func Email(s string) string {
	return text.Fold(strings.TrimSpace(s))
}
