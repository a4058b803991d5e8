package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Input length limits
const (
	MaxNameLength        = 255
	MaxDescriptionLength = 1024
	MaxURLLength         = 2048
)

// RecordTypes are the record types a template can hold.
var RecordTypes = []string{"A", "AAAA", "ALIAS", "CAA", "CNAME", "HINFO", "MX", "NAPTR", "NS", "POOL", "SPF", "SRV", "SSHFP", "TXT", "URL"}

var shortNamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*$`)

// ValidateName checks a template name: required and bounded.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name is required")
	}
	if n := utf8.RuneCountInString(name); n > MaxNameLength {
		return fmt.Errorf("name exceeds maximum length of %d characters (got %d)", MaxNameLength, n)
	}
	return nil
}

// ValidateShortName checks a template short name. Empty is allowed: the
// server derives one from the name.
func ValidateShortName(sid string) error {
	if sid == "" {
		return nil
	}
	if len(sid) > MaxNameLength {
		return fmt.Errorf("short name exceeds maximum length of %d characters", MaxNameLength)
	}
	if !shortNamePattern.MatchString(sid) {
		return fmt.Errorf("invalid short name %q: use letters, digits, '-' and '_'", sid)
	}
	return nil
}

// ValidateDescription checks a template description length.
func ValidateDescription(description string) error {
	if n := utf8.RuneCountInString(description); n > MaxDescriptionLength {
		return fmt.Errorf("description exceeds maximum length of %d characters (got %d)", MaxDescriptionLength, n)
	}
	return nil
}

// NormalizeRecordType upper-cases t and checks it against RecordTypes.
func NormalizeRecordType(t string) (string, error) {
	upper := strings.ToUpper(strings.TrimSpace(t))
	for _, known := range RecordTypes {
		if upper == known {
			return upper, nil
		}
	}
	return "", fmt.Errorf("invalid record type %q: must be one of %s", t, strings.Join(RecordTypes, ", "))
}

// ParsePositiveInt parses a strictly positive integer flag value.
func ParsePositiveInt(s string, fieldName string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", fieldName, s)
	}
	return n, nil
}

// ParseKeyValues turns repeated key=value flag values into a map.
func ParseKeyValues(pairs []string, flagName string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --%s %q: expected key=value", flagName, pair)
		}
		out[key] = value
	}
	return out, nil
}
