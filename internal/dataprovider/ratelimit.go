package dataprovider

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// rateLimitWait is the fixed backoff on HTTP 429, per spec §4.2: "sleep a
// fixed 60 seconds and retry; all other non-success statuses fail fast."
// Unlike the teacher's WithRetry (exponential backoff, internal/dataflows/utils.go),
// this is a single fixed-duration policy with no multiplier.
var rateLimitWait = 60 * time.Second

// withRateLimitRetry calls fn and, for as long as fn reports a 429, sleeps
// rateLimitWait and calls fn again. Any other non-2xx status is returned as
// a permanent error without retrying.
func withRateLimitRetry(fn func() (*resty.Response, error)) (*resty.Response, error) {
	resp, err := fn()
	if err != nil {
		return nil, err
	}
	for resp.StatusCode() == http.StatusTooManyRequests {
		time.Sleep(rateLimitWait)
		resp, err = fn()
		if err != nil {
			return nil, err
		}
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, fmt.Errorf("upstream error %d: %s", resp.StatusCode(), resp.String())
	}
	return resp, nil
}
