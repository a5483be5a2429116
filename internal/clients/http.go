package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pkg/errors"
)

const maxBodySnippet = 256

// StatusError is returned when an upstream answers with a non-2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// Retryable reports whether repeating the request may succeed.
func (e *StatusError) Retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= http.StatusInternalServerError
}

// IsRetryable classifies an error returned by this package. Transport errors are
// retryable, 4xx statuses other than 429 and decode errors are not.
func IsRetryable(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Retryable()
	}
	var decodeErr *DecodeError
	return !errors.As(err, &decodeErr)
}

// DecodeError is returned when a 2xx body does not match the expected shape.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return "decode response: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// apiKeyTransport adds a static header to every request.
type apiKeyTransport struct {
	base   http.RoundTripper
	header string
	key    string
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.key != "" {
		req = req.Clone(req.Context())
		req.Header.Set(t.header, t.key)
	}
	return t.base.RoundTrip(req)
}

func doJSON(ctx context.Context, client *http.Client, method, url string, in, out any) (int, error) {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return 0, errors.Wrap(err, "failed to marshal request")
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return 0, errors.Wrap(err, "failed to create HTTP request")
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, errors.Wrap(err, "HTTP request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, errors.Wrap(err, "failed to read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// callers may still decode error bodies, so out is filled on a best effort basis
		if out != nil {
			_ = json.Unmarshal(raw, out)
		}
		return resp.StatusCode, &StatusError{Code: resp.StatusCode, Body: snippet(raw)}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.StatusCode, &DecodeError{Err: err}
		}
	}

	return resp.StatusCode, nil
}

func snippet(raw []byte) string {
	if len(raw) > maxBodySnippet {
		return string(raw[:maxBodySnippet]) + "..."
	}
	return string(raw)
}
