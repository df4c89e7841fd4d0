package obs

import (
	"net/url"
	"sort"
	"strings"
)

// IsSensitiveLogField returns true when a key likely contains sensitive data.
func IsSensitiveLogField(key string) bool {
	normalized := strings.ToLower(strings.TrimSpace(key))
	normalized = strings.ReplaceAll(normalized, "-", "")
	normalized = strings.ReplaceAll(normalized, "_", "")

	switch {
	case normalized == "authorization":
		return true
	case strings.Contains(normalized, "token"):
		return true
	case strings.Contains(normalized, "secret"):
		return true
	case strings.Contains(normalized, "password"):
		return true
	case strings.Contains(normalized, "apikey"):
		return true
	case strings.Contains(normalized, "cookie"):
		return true
	case strings.Contains(normalized, "auth"):
		return true
	default:
		return false
	}
}

// RedactQueryForLog returns stable, redacted query text for access logs.
// Password-reset links carry tokens in the query string and must not land in
// logs verbatim.
func RedactQueryForLog(query url.Values) string {
	if len(query) == 0 {
		return ""
	}

	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		values := query[k]
		redacted := make([]string, len(values))
		for i, v := range values {
			if IsSensitiveLogField(k) {
				redacted[i] = "[REDACTED]"
			} else {
				redacted[i] = v
			}
		}
		parts = append(parts, k+"="+strings.Join(redacted, ","))
	}
	return strings.Join(parts, "&")
}
