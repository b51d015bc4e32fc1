package page

import (
	"strings"
)

// negativeKeywords flag a comment as negative when any appears in its message.
var negativeKeywords = []string{"bad", "terrible", "awful", "hate", "dislike", "problem", "issue"}

// IsNegative reports whether message contains a negative keyword, case-insensitively.
func IsNegative(message string) bool {
	lower := strings.ToLower(message)
	for _, kw := range negativeKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// FilterNegative returns the entries of comments["data"] whose message is negative.
// It never returns nil so the result always encodes as a JSON list.
func FilterNegative(comments map[string]any) []map[string]any {
	out := []map[string]any{}
	for _, item := range listOf(comments["data"]) {
		c := objectOf(item)
		msg, _ := c["message"].(string)
		if c != nil && IsNegative(msg) {
			out = append(out, c)
		}
	}
	return out
}
