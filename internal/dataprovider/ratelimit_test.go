package dataprovider

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
)

// TestWithRateLimitRetryHandlesMultiple429sThenSuccess mirrors
// original_source/tests/test_api_rate_limiting.py::
// test_make_api_request_handles_multiple_429s_then_success: three
// consecutive 429s followed by a 200 must sleep three times, not bail out
// after a single retry.
func TestWithRateLimitRetryHandlesMultiple429sThenSuccess(t *testing.T) {
	var calls int32
	const throttledResponses = 3

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n <= throttledResponses {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	prevWait := rateLimitWait
	rateLimitWait = time.Millisecond
	defer func() { rateLimitWait = prevWait }()

	client := resty.New()
	resp, err := withRateLimitRetry(func() (*resty.Response, error) {
		return client.R().Get(server.URL)
	})
	if err != nil {
		t.Fatalf("withRateLimitRetry: %v", err)
	}
	if resp.StatusCode() != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode())
	}
	if got := atomic.LoadInt32(&calls); got != throttledResponses+1 {
		t.Fatalf("upstream calls = %d, want %d (three 429s plus the final 200)", got, throttledResponses+1)
	}
}

// TestWithRateLimitRetryFailsFastOnPermanentError verifies that a non-429
// non-2xx status is returned immediately, with no sleep and no retry.
func TestWithRateLimitRetryFailsFastOnPermanentError(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := resty.New()
	_, err := withRateLimitRetry(func() (*resty.Response, error) {
		return client.R().Get(server.URL)
	})
	if err == nil {
		t.Fatal("expected an error for a 404 response")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("upstream calls = %d, want 1 (no retry on a non-429 failure)", got)
	}
}
