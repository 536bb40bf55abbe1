package blog

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer strips scripts, event handlers and unknown markup from post
// bodies while keeping ordinary formatting and links.
type Sanitizer struct {
	body  *bluemonday.Policy
	title *bluemonday.Policy
}

func NewSanitizer() *Sanitizer {
	body := bluemonday.UGCPolicy()
	body.RequireNoFollowOnLinks(true)
	body.AddTargetBlankToFullyQualifiedLinks(true)

	return &Sanitizer{
		body:  body,
		title: bluemonday.StrictPolicy(),
	}
}

func (s *Sanitizer) Body(in string) string {
	return strings.TrimSpace(s.body.Sanitize(in))
}

// Title drops all markup and returns plain text; templates escape it on
// output.
func (s *Sanitizer) Title(in string) string {
	return strings.TrimSpace(html.UnescapeString(s.title.Sanitize(in)))
}
