// Package sanitize strips markup from free text entered by users: review
// notes, titles and descriptions.
package sanitize

import (
	"html"
	"regexp"
	"strings"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// Text removes HTML tags and trims the result. Entities are decoded and the
// string is stripped again so encoded tags do not survive.
func Text(s string) string {
	out := tagPattern.ReplaceAllString(s, "")
	out = html.UnescapeString(out)
	out = tagPattern.ReplaceAllString(out, "")
	return strings.TrimSpace(out)
}

// Line is Text for single-line fields; whitespace runs collapse to one space.
func Line(s string) string {
	return strings.Join(strings.Fields(Text(s)), " ")
}

// TextPtr sanitizes an optional value, keeping nil as nil.
func TextPtr(s *string) *string {
	if s == nil {
		return nil
	}
	out := Text(*s)
	return &out
}
