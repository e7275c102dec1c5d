// Package htmlsanitize strips markup from user-supplied text fields.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Title sanitizes a group title: all HTML removed, entities unescaped,
// whitespace trimmed. The result is safe to store and to echo back in
// JSON responses.
func Title(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}
