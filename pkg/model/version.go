package model

import (
	"fmt"
	"strconv"
	"strings"
)

// FirstVersion is the token assigned to the initial version of a dataset.
const FirstVersion = "v1"

// ParseVersion extracts the numeric part of a version token such as "v3".
func ParseVersion(token string) (int, error) {
	if !strings.HasPrefix(token, "v") {
		return 0, fmt.Errorf("version token %q does not start with 'v'", token)
	}
	n, err := strconv.Atoi(strings.TrimPrefix(token, "v"))
	if err != nil {
		return 0, fmt.Errorf("version token %q is not numeric: %v", token, err)
	}
	if n < 1 {
		return 0, fmt.Errorf("version token %q is not positive", token)
	}
	return n, nil
}

// FormatVersion renders a version number as a token.
func FormatVersion(n int) string {
	return "v" + strconv.Itoa(n)
}

// NextVersion allocates the token following the given one. Version
// numbers increase strictly and are never reused, including across
// rollbacks.
func NextVersion(token string) (string, error) {
	n, err := ParseVersion(token)
	if err != nil {
		return "", err
	}
	return FormatVersion(n + 1), nil
}
