package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxErrorBody caps how much of a rejected response is kept.
const maxErrorBody = 4 << 10

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 10 * time.Second}
}

// postJSON sends payload and returns a *StatusError when accept rejects the
// response status. header may add or sign request headers from the encoded
// body.
func postJSON(ctx context.Context, client *http.Client, notifier, url string, payload any,
	header func(h http.Header, body []byte), accept func(code int) bool) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", notifier, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", notifier, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if header != nil {
		header(req.Header, body)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send %s message: %w", notifier, err)
	}
	defer resp.Body.Close()

	if !accept(resp.StatusCode) {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Notifier: notifier, Code: resp.StatusCode, Body: string(data)}
	}
	return nil
}
