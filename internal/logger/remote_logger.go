package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"
)

const pushTimeout = 5 * time.Second

var pushClient = &http.Client{Timeout: pushTimeout}

// sendLog pushes one entry to REMOTE_LOG_HTTP_URI in the background.
// Failures go to stderr only; they never reach the caller.
func sendLog(level, message string, attrs []slog.Attr) {
	uri := os.Getenv("REMOTE_LOG_HTTP_URI")
	if uri == "" {
		return
	}
	entry := buildLogEntry(level, message, attrs, time.Now())

	go func() {
		if err := push(uri, entry); err != nil {
			fmt.Fprintf(os.Stderr, "remote log: %v\n", err)
		}
	}()
}

func push(uri string, entry map[string]any) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uri, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := pushClient.Do(req)
	if err != nil {
		return fmt.Errorf("send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}
