package timecalc

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the layout of the front-matter "date" field.
	DateLayout = "2006-01-02"
	// TimestampLayout is the layout of the front-matter "updated" field.
	TimestampLayout = time.RFC3339
)

// FormatDate formats t as a calendar date. The zero time yields "".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// FormatTimestamp formats t as an ISO-8601 timestamp in its own location,
// so repeated pulls of the same feed produce identical text.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(TimestampLayout)
}

// EntryDate picks the date shown for an entry: the publication time when the
// feed carries one, the update time otherwise.
func EntryDate(published, updated time.Time) time.Time {
	if !published.IsZero() {
		return published
	}
	return updated
}

// ParseFeedTime parses an Atom date construct. Hatena emits RFC 3339 with an
// offset; a bare local timestamp is accepted and read as UTC.
func ParseFeedTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse feed time %q", s)
}

// WSSECreated formats the "Created" value of a WSSE UsernameToken.
func WSSECreated(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}
