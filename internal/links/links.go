// Package links extracts inline note references from body text.
package links

import (
	"regexp"
	"strings"
)

// inlineRe matches the [title](identity) reference the editor inserts.
// The title part is display-only and never validated against the target.
var inlineRe = regexp.MustCompile(`\[[^\]]*\]\(([^)]+)\)`)

// Extract returns the deduplicated identities referenced from body, in
// first-seen order. Malformed or partial brackets simply do not match:
// extraction is best effort and never fails, so a broken link self-heals
// once the text is corrected and re-saved.
func Extract(body string) []string {
	matches := inlineRe.FindAllStringSubmatch(body, -1)
	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, m := range matches {
		id := strings.TrimSpace(m[1])
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
