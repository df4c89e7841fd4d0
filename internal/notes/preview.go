package notes

import "strings"

// ContentPreview returns the first maxLines lines of content, appending "..."
// on a new line if truncated. If content has maxLines or fewer lines, returns
// content unchanged.
func ContentPreview(content string, maxLines int) string {
	if content == "" || maxLines <= 0 {
		return content
	}

	if CountLines(content) <= maxLines {
		return content
	}

	lines := strings.SplitN(content, "\n", maxLines+1)
	return strings.Join(lines[:maxLines], "\n") + "\n..."
}

// CountLines returns the number of lines in content.
// An empty string has 0 lines.
func CountLines(content string) int {
	if content == "" {
		return 0
	}
	return strings.Count(content, "\n") + 1
}
