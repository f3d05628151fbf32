// Package sanitize strips unsafe markup from text authored by providers.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugc    = bluemonday.UGCPolicy()
	strict = bluemonday.StrictPolicy()
)

// RichText keeps basic formatting tags and removes scripts, handlers and unsafe URLs.
func RichText(s string) string {
	return strings.TrimSpace(ugc.Sanitize(s))
}

// PlainText removes every tag.
func PlainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// PlainTexts applies PlainText to each element and drops empty results.
func PlainTexts(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if v := PlainText(s); v != "" {
			out = append(out, v)
		}
	}
	return out
}
