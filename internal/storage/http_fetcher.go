package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// PayloadFetcher retrieves an image payload from a remote URL, for the
// upload-by-URL path.
type PayloadFetcher interface {
	FetchPayload(ctx context.Context, imageURL string) (data []byte, contentType string, err error)
}

// HTTPPayloadFetcher implements PayloadFetcher over plain HTTP with a
// small retry budget for transient failures.
type HTTPPayloadFetcher struct {
	client   *http.Client
	maxBytes int64
}

// NewHTTPPayloadFetcher creates an HTTP payload fetcher. maxBytes
// bounds the downloaded body; <= 0 means 10MB.
func NewHTTPPayloadFetcher(maxBytes int64) *HTTPPayloadFetcher {
	if maxBytes <= 0 {
		maxBytes = 10 * 1024 * 1024
	}
	transport := &http.Transport{
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &HTTPPayloadFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
		maxBytes: maxBytes,
	}
}

// FetchPayload downloads the URL body. 4xx responses fail immediately;
// network errors and 5xx responses are retried up to 3 attempts.
func (f *HTTPPayloadFetcher) FetchPayload(ctx context.Context, imageURL string) ([]byte, string, error) {
	var lastErr error

	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, "", ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
		if err != nil {
			return nil, "", fmt.Errorf("invalid URL: %w", err)
		}
		req.Header.Set("Accept", "image/jpeg, image/png, image/webp, */*")
		req.Header.Set("User-Agent", "Go-Dental-Review/1.0")

		resp, err := f.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		data, contentType, err := f.readBody(resp)
		if err == nil {
			return data, contentType, nil
		}
		lastErr = err
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			// Client errors are not retryable.
			break
		}
	}

	return nil, "", fmt.Errorf("failed to fetch payload after 3 attempts: %w", lastErr)
}

func (f *HTTPPayloadFetcher) readBody(resp *http.Response) ([]byte, string, error) {
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read body: %w", err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, "", fmt.Errorf("payload exceeds %d bytes", f.maxBytes)
	}
	return data, resp.Header.Get("Content-Type"), nil
}
