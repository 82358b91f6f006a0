package repository

import (
	"fmt"
	"time"
)

// dbTimeLayout is fixed width so that string comparison orders rows in time.
const dbTimeLayout = "2006-01-02 15:04:05.000"

func formatDBTime(t time.Time) string {
	return t.UTC().Format(dbTimeLayout)
}

// parseDBTime accepts what the driver hands back for a TIMESTAMP column:
// either a parsed time.Time or the stored text.
func parseDBTime(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x.UTC(), nil
	case string:
		return parseDBTimeString(x)
	case []byte:
		return parseDBTimeString(string(x))
	case nil:
		return time.Time{}, nil
	default:
		return time.Time{}, fmt.Errorf("unsupported time value %T", v)
	}
}

func parseDBTimeString(s string) (time.Time, error) {
	for _, layout := range []string{dbTimeLayout, "2006-01-02 15:04:05", time.RFC3339Nano} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid stored time %q", s)
}
