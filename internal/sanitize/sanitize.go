// Package sanitize cleans operator-supplied text before it is stored. Names
// (calendars, months, weekdays) are plain text and lose all markup.
// Descriptions may keep basic formatting but nothing executable.
package sanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strict     *bluemonday.Policy
	ugc        *bluemonday.Policy
	policyOnce sync.Once
)

func policies() (*bluemonday.Policy, *bluemonday.Policy) {
	policyOnce.Do(func() {
		strict = bluemonday.StrictPolicy()

		ugc = bluemonday.UGCPolicy()
		// Month tables in descriptions.
		ugc.AllowElements("table", "thead", "tbody", "tr", "td", "th", "caption")
		ugc.AllowAttrs("colspan", "rowspan").OnElements("td", "th")
	})
	return strict, ugc
}

// Text strips every tag from s and trims surrounding space. Entities are
// decoded again so "Harvest & Frost" round-trips; output escaping is the
// renderer's job.
func Text(s string) string {
	if s == "" {
		return ""
	}
	p, _ := policies()
	return strings.TrimSpace(html.UnescapeString(p.Sanitize(s)))
}

// HTML removes scripts, event handlers and javascript: URLs from s while
// keeping safe formatting.
func HTML(s string) string {
	if s == "" {
		return ""
	}
	_, p := policies()
	return p.Sanitize(s)
}
