package reportingest

import "strings"

// NormalizeUsername trims surrounding whitespace from a submitted username.
func NormalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

// NormalizeReportType lowercases a submitted report type so stored types
// compare case-insensitively.
func NormalizeReportType(reportType string) string {
	return strings.ToLower(strings.TrimSpace(reportType))
}
