package core

import "strings"

// ResolveReference resolves a soft citation (a reference title, not an id)
// against an article collection. It returns the first article whose title
// matches the reference exactly (case-insensitive), then falls back to a
// substring match in either direction.
//
// This linking is inherently ambiguous and best-effort: it returns zero or
// one match, and a match is approximate, not authoritative.
func ResolveReference(articles []Article, reference string) (*Article, bool) {
	ref := strings.ToLower(strings.TrimSpace(reference))
	if ref == "" {
		return nil, false
	}

	for i := range articles {
		if strings.ToLower(strings.TrimSpace(articles[i].Title)) == ref {
			return &articles[i], true
		}
	}

	for i := range articles {
		title := strings.ToLower(strings.TrimSpace(articles[i].Title))
		if title == "" {
			continue
		}
		if strings.Contains(title, ref) || strings.Contains(ref, title) {
			return &articles[i], true
		}
	}

	return nil, false
}
