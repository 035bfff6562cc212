package logger

import (
	"encoding/json"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// jobName labels the Loki stream; it follows APP_NAME so several services can share one Loki.
func jobName() string {
	if name := os.Getenv("APP_NAME"); name != "" {
		return name
	}
	return "shop-crud"
}

// buildLogEntry creates a push payload compatible with Alloy/Loki.
func buildLogEntry(level, message string, attrs []slog.Attr, at time.Time) map[string]any {
	return map[string]any{
		"streams": []map[string]any{
			{
				"stream": map[string]string{
					"level": level,
					"job":   jobName(),
				},
				"values": [][]string{
					{
						strconv.FormatInt(at.UnixNano(), 10),
						buildLogLine(level, message, attrs, at),
					},
				},
			},
		},
	}
}

func buildLogLine(level, message string, attrs []slog.Attr, at time.Time) string {
	logData := map[string]any{
		"level":   level,
		"message": message,
		"time":    at.Format(time.RFC3339),
	}

	for _, attr := range attrs {
		logData[attr.Key] = attr.Value.Any()
	}

	jsonBytes, _ := json.Marshal(logData)
	return string(jsonBytes)
}
