package cli

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/hackgods/clinic-scheduling/internal/clinic"
)

var errInvalid = errors.New("invalid input")

func ParseInt(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, errInvalid
	}
	return n, nil
}

func ParseNonNegativeInt(raw string) (int, error) {
	n, err := ParseInt(raw)
	if err != nil || n < 0 {
		return 0, errInvalid
	}
	return n, nil
}

// ParseDate accepts YYYY-MM-DD.
func ParseDate(raw string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, errInvalid
	}
	return t, nil
}

// ParseText rejects empty input. Time slots go through here too: their
// format (HH:MM-HH:MM) is a hint to the operator, not enforced.
func ParseText(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", errInvalid
	}
	return s, nil
}

func ParseStatus(raw string) (clinic.Status, error) {
	return clinic.ParseStatus(raw)
}

// ParseChoice parses a menu choice in [lo, hi].
func ParseChoice(lo, hi int) func(string) (int, error) {
	return func(raw string) (int, error) {
		n, err := ParseInt(raw)
		if err != nil || n < lo || n > hi {
			return 0, errInvalid
		}
		return n, nil
	}
}
