package handlers

import "time"

// parseYMD checks a civil date string. Zone does not matter for validation.
func parseYMD(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
