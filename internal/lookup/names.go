package lookup

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

const fallbackPrefix = "Agent "

// FallbackName synthesizes the display name used when no real name could
// be resolved for an agent id.
func FallbackName(id int64) string {
	return fallbackPrefix + strconv.FormatInt(id, 10)
}

// IsFallbackName reports whether a display name has the synthesized
// fallback shape.
func IsFallbackName(name string) bool {
	return strings.HasPrefix(name, fallbackPrefix)
}

// ParseAgentID parses the textual account number carried by activity
// records. Absent or non-numeric values are not an error, the record is
// simply skipped by callers.
func ParseAgentID(accountNumber string) (int64, bool) {
	if accountNumber == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimSpace(accountNumber), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// IsValidAgentName decides whether an account name from an activity record
// is usable as a display name. Rejects empty/whitespace-only strings, the
// bare id, all-digit strings, and single characters. Everything else is
// accepted, including punctuated, underscored, and mixed-script names.
func IsValidAgentName(accountName string, agentID int64) bool {
	name := strings.TrimSpace(accountName)
	if name == "" {
		return false
	}
	if name == strconv.FormatInt(agentID, 10) {
		return false
	}
	if isAllDigits(name) {
		return false
	}
	if utf8.RuneCountInString(name) < 2 {
		return false
	}
	return true
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
