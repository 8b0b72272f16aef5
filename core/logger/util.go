package logger

import (
	"strings"
	"time"
)

// Status renders err as the status attribute: "ok" or "fail".
func Status(err error) string {
	if err == nil {
		return "ok"
	}
	return "fail"
}

// Took is the time since start at millisecond precision.
func Took(start time.Time) time.Duration {
	return RoundMS(time.Since(start))
}

func RoundMS(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d.Round(time.Millisecond)
}

// Preview joins at most limit names and reports how many were left out.
func Preview(names []string, limit int) (string, int) {
	if limit < 0 {
		limit = 0
	}
	if len(names) <= limit {
		return strings.Join(names, ", "), 0
	}
	return strings.Join(names[:limit], ", "), len(names) - limit
}
