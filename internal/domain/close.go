package domain

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var numericID = regexp.MustCompile(`^\d+$`)

// NumericID reports whether a user identifier is purely numeric and can
// be used as a delivery address directly, without a registry lookup.
func NumericID(id string) bool {
	return numericID.MatchString(id)
}

// ParseCloseAt parses a cutoff time "HH:MM" into minutes since midnight.
func ParseCloseAt(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, errors.New("expected HH:MM")
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, errors.New("invalid hour")
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, errors.New("invalid minute")
	}
	return h*60 + m, nil
}

// CloseDue reports whether the settlement pass should run now: closeAt
// parses, the cutoff has passed, and lastRun is not today's date.
// Missing or malformed closeAt never triggers a run. CloseDue does not
// advance lastRun; the caller records it only after a completed pass so
// a failed pass is retried on a later tick within the same day.
func CloseDue(now time.Time, closeAt, lastRun string) bool {
	closeM, err := ParseCloseAt(closeAt)
	if err != nil {
		return false
	}
	if Day(now) == lastRun {
		return false
	}
	return now.Hour()*60+now.Minute() >= closeM
}
