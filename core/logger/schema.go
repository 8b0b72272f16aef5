package logger

import (
	"log/slog"
	"strings"
)

// levelName buckets custom levels such as INFO+2 into the four names the
// log schema allows.
func levelName(l slog.Level) string {
	switch {
	case l < slog.LevelInfo:
		return "DEBUG"
	case l < slog.LevelWarn:
		return "INFO"
	case l < slog.LevelError:
		return "WARN"
	default:
		return "ERROR"
	}
}

// statusNames folds spellings seen in call sites onto ok, fail and skip.
var statusNames = map[string]string{
	"success": "ok",
	"error":   "fail",
	"failed":  "fail",
	"skipped": "skip",
}

func normalizeStatus(status string) string {
	status = strings.ToLower(strings.TrimSpace(status))
	if mapped, ok := statusNames[status]; ok {
		return mapped
	}
	return status
}

var defaultKeyOrder = []string{
	"ts",
	"level",
	"component",
	"event",
	"status",
	"rid",
	"rid_full",
	"ts_unix_nano",
	"update_id",
	"user_id",
	"chat_id",
	"handler",
	"op",
	"cb_key",
	"question_user_id",
	"released",
	"duration_ms",
	"count",
	"pending",
	"answered",
	"total",
	"driver",
	"path",
	"mode",
	"listen",
	"public_url",
	"http_code",
	"db",
	"host",
	"port",
	"err",
	"err_code",
	"cause",
	"retryable",
	"attempts",
	"backoff_ms",
	"collapsed",
	"repeats",
}
