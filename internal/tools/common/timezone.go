package common

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// TimeZoneEnv names the environment variable holding the user's IANA zone.
const TimeZoneEnv = "AURA_TIMEZONE"

// localLayouts are accepted for times without an offset, in order.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// DefaultTimeZone returns $AURA_TIMEZONE, or UTC.
func DefaultTimeZone() string {
	if tz := strings.TrimSpace(os.Getenv(TimeZoneEnv)); tz != "" {
		return tz
	}
	return "UTC"
}

// LoadLocation resolves name, falling back to DefaultTimeZone when empty.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultTimeZone()
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid time zone %q: %w", name, err)
	}
	return loc, nil
}

// ParseTime parses an RFC 3339 time, or a local date-time or date that is
// interpreted in loc.
func ParseTime(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q: use RFC3339 (2025-01-15T14:00:00Z) or YYYY-MM-DDTHH:MM:SS", value)
}
