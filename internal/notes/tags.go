package notes

import "strings"

// NormalizeTags maps a raw comma-separated tag string to a deduplicated
// sequence of trimmed, lowercased, non-empty tag names, preserving first-seen
// order. Malformed input (extra commas, whitespace-only segments) degrades to
// fewer tags; this never fails.
func NormalizeTags(raw string) []string {
	if raw == "" {
		return nil
	}

	seen := make(map[string]bool)
	var out []string
	for _, piece := range strings.Split(raw, ",") {
		name := strings.ToLower(strings.TrimSpace(piece))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}
