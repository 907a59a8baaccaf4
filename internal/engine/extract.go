package engine

import (
	nurl "net/url"
	"regexp"
	"strings"

	"github.com/go-shiori/go-readability"
)

var (
	// The producer is instructed to answer with bare HTML, but it sometimes
	// wraps the document in a fence or prepends an explanation anyway.
	fenceRe    = regexp.MustCompile("(?s)```html?\\s*\\n(.*?)```")
	documentRe = regexp.MustCompile(`(?is)<!DOCTYPE html.*</html>`)
)

// ExtractDocument converts raw concatenated producer output into a
// self-contained document. Fallback chain, first success wins: fenced html
// block, spanning DOCTYPE..</html> substring, whole text trimmed.
func ExtractDocument(raw string) string {
	if m := fenceRe.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := documentRe.FindString(raw); m != "" {
		return strings.TrimSpace(m)
	}
	return strings.TrimSpace(raw)
}

var titleBaseURL, _ = nurl.Parse("https://promptplay.local/artifact")

// DeriveTitle pulls a display title out of the generated document itself.
// Returns "" when the document has no usable title.
func DeriveTitle(document string) string {
	article, err := readability.FromReader(strings.NewReader(document), titleBaseURL)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(article.Title)
}
