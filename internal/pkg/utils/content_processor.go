// Package utils holds small helpers used by the views.
package utils

import (
	"regexp"
	"strings"
)

var (
	scriptBlock = regexp.MustCompile(`(?is)<(script|iframe|object|embed)[^>]*>.*?</(script|iframe|object|embed)>`)
	eventAttr   = regexp.MustCompile(`(?i)\s+on[a-z]+\s*=\s*("[^"]*"|'[^']*'|[^\s>]+)`)
	jsURL       = regexp.MustCompile(`(?i)(href|src)\s*=\s*(["']?)\s*javascript:`)
)

// page stylesheet class per tag, only added when the tag has no class yet
var pageClasses = []struct {
	tag   *regexp.Regexp
	class string
}{
	{regexp.MustCompile(`<(h2)(\s[^>]*)?>`), "page-heading"},
	{regexp.MustCompile(`<(h3)(\s[^>]*)?>`), "page-subheading"},
	{regexp.MustCompile(`<(ul|ol)(\s[^>]*)?>`), "page-list"},
	{regexp.MustCompile(`<(table)(\s[^>]*)?>`), "page-table"},
	{regexp.MustCompile(`<(a)(\s[^>]*)?>`), "page-link"},
}

// PageContent prepares the HTML of a static page for display. Pages are
// written by admins; scripts, embeds and inline handlers are still removed.
func PageContent(content string) string {
	out := scriptBlock.ReplaceAllString(content, "")
	out = eventAttr.ReplaceAllString(out, "")
	out = jsURL.ReplaceAllString(out, `$1=$2#`)

	for _, pc := range pageClasses {
		out = pc.tag.ReplaceAllStringFunc(out, func(m string) string {
			if strings.Contains(m, "class=") {
				return m
			}
			sub := pc.tag.FindStringSubmatch(m)
			return "<" + sub[1] + sub[2] + ` class="` + pc.class + `">`
		})
	}
	return out
}
