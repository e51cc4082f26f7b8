package analyzer

import "strings"

// Severity classifies a diagnostic.
type Severity uint8

const (
	// SeverityInfo is for informational diagnostics.
	SeverityInfo Severity = iota
	// SeverityWarning is for recoverable problems such as missing tokens.
	SeverityWarning
	// SeverityError is for hard parse errors.
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// ParseSeverity maps a case-insensitive name to a Severity. Unknown names
// map to SeverityInfo so a bad filter shows everything rather than nothing.
func ParseSeverity(name string) Severity {
	switch strings.ToLower(name) {
	case "error":
		return SeverityError
	case "warning":
		return SeverityWarning
	}
	return SeverityInfo
}
