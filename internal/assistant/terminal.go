package assistant

import (
	"html"
	"regexp"
	"strings"
)

const (
	ansiBold  = "\x1b[1m"
	ansiReset = "\x1b[0m"
)

var (
	anchorOpenPattern = regexp.MustCompile(`<a [^>]*>`)

	terminalTags = strings.NewReplacer(
		"<b>", ansiBold,
		"</b>", ansiReset,
		"<br>", "\n",
		"</a>", "",
	)
)

// Terminal renders markup produced by Format for a text terminal: bold
// becomes an ANSI attribute, line breaks become newlines, links are shown as
// their URL and entities are decoded.
//
// markup may be a partially revealed reply. A trailing tag or entity that is
// not complete yet is held back, so rendering successive prefixes yields
// successive prefixes of the final output.
func Terminal(markup string) string {
	markup = completePrefix(markup)
	out := anchorOpenPattern.ReplaceAllString(markup, "")
	out = terminalTags.Replace(out)
	return html.UnescapeString(out)
}

// completePrefix drops an unterminated tag or entity at the end of markup.
func completePrefix(markup string) string {
	if i := strings.LastIndexByte(markup, '<'); i >= 0 && !strings.Contains(markup[i:], ">") {
		markup = markup[:i]
	}
	if i := strings.LastIndexByte(markup, '&'); i >= 0 && !strings.Contains(markup[i:], ";") {
		markup = markup[:i]
	}
	return markup
}
