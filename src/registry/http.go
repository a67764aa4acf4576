package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

const fetchTimeout = 30 * time.Second

// httpClient is shared by all index fetches: one bounded pool, one
// request timeout.
var httpClient = &http.Client{
	Timeout: fetchTimeout,
	Transport: &http.Transport{
		MaxIdleConns:        16,
		MaxConnsPerHost:     8,
		MaxIdleConnsPerHost: 4,
	},
}

// fetchIndexBytes GETs a sharded index file. 404-class statuses map to
// ErrNotFound, expiry to ErrTimeout.
func fetchIndexBytes(ctx context.Context, url, token, userAgent string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("registry: create request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: GET %s", ErrTimeout, url)
		}
		return nil, fmt.Errorf("registry: GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound,
		resp.StatusCode == http.StatusGone,
		resp.StatusCode == http.StatusUnavailableForLegalReasons:
		return nil, fmt.Errorf("%w: GET %s: status %d", ErrNotFound, url, resp.StatusCode)
	default:
		return nil, fmt.Errorf("registry: GET %s: status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: GET %s", ErrTimeout, url)
		}
		return nil, fmt.Errorf("registry: read %s: %w", url, err)
	}
	return data, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}
