// Package tone rewrites composed responses into the voice of a user
// segment.
package tone

import (
	"regexp"
	"strings"

	"github.com/kalambet/fincoach/internal/profile"
)

// Applied in order.
var studentPhrases = [][2]string{
	{"You should", "You might want to"},
	{"It is recommended", "It's a good idea to"},
}

var dollarAmount = regexp.MustCompile(`\$(\d+)`)

// Adapt returns text in the voice of segment. Students get softened phrasing
// and a coffee comparison after every "$<digits>" amount; every other
// segment gets text back unchanged.
func Adapt(text string, segment profile.Segment) string {
	switch segment {
	case profile.SegmentStudent:
		for _, p := range studentPhrases {
			text = strings.ReplaceAll(text, p[0], p[1])
		}
		return dollarAmount.ReplaceAllString(text, "$$$1 (that's like $1 cups of coffee! ☕)")
	default:
		return text
	}
}
