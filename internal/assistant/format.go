package assistant

import (
	"regexp"
	"strings"
)

var (
	boldPattern   = regexp.MustCompile(`\*\*(.+?)\*\*`)
	bulletPattern = regexp.MustCompile(`(?m)^- (.*)$`)
	urlPattern    = regexp.MustCompile(`https?://[^\s<"]+`)

	// Only the characters that can open a tag or an entity are escaped;
	// quotes and apostrophes pass through untouched.
	markupEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
)

// Format converts an assistant reply into display markup. The reply is
// escaped first so only the markup added here is live.
func Format(reply string) string {
	out := markupEscaper.Replace(reply)
	out = boldPattern.ReplaceAllString(out, "<b>$1</b>")
	out = bulletPattern.ReplaceAllString(out, "• $1")
	out = urlPattern.ReplaceAllString(out, `<a href="$0" target="_blank">$0</a>`)
	return strings.ReplaceAll(out, "\n", "<br>")
}
