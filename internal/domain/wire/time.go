package wire

import (
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	// BackendLayout is the fixed-width format the backend emits.
	BackendLayout = "2006-01-02T15:04:05.000Z0700"
	// CanonicalLayout is the normalized form; lexicographic order matches time order.
	CanonicalLayout = "2006-01-02T15:04:05.000Z"
	// DateKey is the extended-JSON key that wraps dates.
	DateKey = "$date"
)

// timeLayouts are tried in order. RFC 3339 parsing accepts optional fractional
// seconds; date-only values are read as UTC midnight.
var timeLayouts = []string{
	BackendLayout,
	time.RFC3339Nano,
	time.RFC3339,
	time.DateOnly,
}

// ParseTime parses a timestamp string in the backend format or generic ISO-8601.
func ParseTime(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, decodeErr("", "empty timestamp")
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, decodeErr("", "unrecognized timestamp "+strconv.Quote(trimmed))
}

// FormatTime renders t in CanonicalLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(CanonicalLayout)
}

// NormalizeTime parses raw and re-renders it in CanonicalLayout.
func NormalizeTime(raw string) (string, error) {
	t, err := ParseTime(raw)
	if err != nil {
		return "", err
	}
	return FormatTime(t), nil
}

type timeStrategy func(value gjson.Result) (time.Time, bool)

var timeChain = []timeStrategy{
	timeFromString,
	timeFromDateWrapper,
}

// TimeFrom decodes a timestamp value into CanonicalLayout.
func TimeFrom(value gjson.Result) (string, error) {
	for _, strategy := range timeChain {
		if t, ok := strategy(value); ok {
			return FormatTime(t), nil
		}
	}
	if value.Type == gjson.String {
		_, err := ParseTime(value.Str)
		return "", err
	}
	return "", decodeErr("", "invalid timestamp shape")
}

func timeFromString(value gjson.Result) (time.Time, bool) {
	if value.Type != gjson.String {
		return time.Time{}, false
	}
	t, err := ParseTime(value.Str)
	return t, err == nil
}

// timeFromDateWrapper accepts {"$date": "<iso>"}, {"$date": <millis>} and
// {"$date": {"$numberLong": "<millis>"}}.
func timeFromDateWrapper(value gjson.Result) (time.Time, bool) {
	wrapped := lookup(value, DateKey)
	switch wrapped.Type {
	case gjson.String:
		return timeFromString(wrapped)
	case gjson.Number:
		return time.UnixMilli(wrapped.Int()).UTC(), true
	case gjson.JSON:
		long := lookup(wrapped, "$numberLong")
		if long.Type != gjson.String {
			return time.Time{}, false
		}
		ms, err := strconv.ParseInt(strings.TrimSpace(long.Str), 10, 64)
		if err != nil {
			return time.Time{}, false
		}
		return time.UnixMilli(ms).UTC(), true
	}
	return time.Time{}, false
}
