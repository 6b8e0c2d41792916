package harness

import (
	"context"
	"io"
	"net/http"
	"time"
)

// IsTargetReachable does a plain GET against url and reports whether it
// answered 200 within timeout. Cases use it to skip, not fail, when the
// application is not running.
func IsTargetReachable(ctx context.Context, url string, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	response, err := http.DefaultClient.Do(req)
	if response == nil || err != nil {
		return false
	}
	defer response.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(response.Body, 64<<10))

	return response.StatusCode == http.StatusOK
}

// ProbeFunc matches IsTargetReachable so runners can swap it out.
type ProbeFunc func(ctx context.Context, url string, timeout time.Duration) bool
