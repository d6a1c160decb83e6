package storage

import "strings"

// matchesSearch reports whether query occurs in any of the fields,
// ignoring case. An empty query matches everything.
// SQLite's LIKE only folds ASCII, so accented titles are matched here.
func matchesSearch(query string, fields ...string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), query) {
			return true
		}
	}
	return false
}
