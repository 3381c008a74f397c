package conversation

import (
	"fmt"
	"strconv"
	"strings"

	handyhub_errors "handyhub/pkg/errors"
)

const idSeparator = "-"

// ID returns the canonical conversation id of a user pair. The lower id
// always comes first so both participants resolve the same key.
func ID(a, b int64) string {
	low, high := Pair(a, b)
	return strconv.FormatInt(low, 10) + idSeparator + strconv.FormatInt(high, 10)
}

// Pair orders two user ids ascending.
func Pair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}

// ParseID splits "{a}-{b}" into its two user ids, in the order written.
// Both parts must be positive base-10 integers and must differ.
func ParseID(id string) (int64, int64, error) {
	parts := strings.Split(id, idSeparator)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("conversation id %q: expected two user ids: %w", id, handyhub_errors.ErrInvalidInput)
	}
	a, err := parseUserID(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("conversation id %q: %w", id, err)
	}
	b, err := parseUserID(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("conversation id %q: %w", id, err)
	}
	if a == b {
		return 0, 0, fmt.Errorf("conversation id %q: participants must differ: %w", id, handyhub_errors.ErrInvalidInput)
	}
	return a, b, nil
}

func parseUserID(part string) (int64, error) {
	if part == "" || strings.TrimLeft(part, "0123456789") != "" {
		return 0, fmt.Errorf("user id %q is not numeric: %w", part, handyhub_errors.ErrInvalidInput)
	}
	v, err := strconv.ParseInt(part, 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("user id %q out of range: %w", part, handyhub_errors.ErrInvalidInput)
	}
	return v, nil
}
