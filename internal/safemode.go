package internal

import "strings"

var destructiveKeywords = []string{"DROP", "DELETE", "UPDATE", "ALTER"}

// IsDestructive is the editor's safe-mode check. It is a plain substring
// match, so a SELECT mentioning "updated_at" also asks for confirmation.
func IsDestructive(sql string) bool {
	upper := strings.ToUpper(sql)
	for _, kw := range destructiveKeywords {
		if strings.Contains(upper, kw) {
			return true
		}
	}
	return false
}

// TouchesSchema reports whether a prompt probably changes tables, in which
// case cached schema listings are stale.
func TouchesSchema(prompt string) bool {
	lower := strings.ToLower(prompt)
	return strings.Contains(lower, "create") || strings.Contains(lower, "drop")
}
