package validators

import "strings"

// SanitizeString trims surrounding whitespace and truncates free-text query
// input, such as stock item search terms, to maxLen bytes.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen > 0 && len(trimmed) > maxLen {
		return trimmed[:maxLen]
	}
	return trimmed
}
