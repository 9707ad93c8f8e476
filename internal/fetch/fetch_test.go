package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetch_ReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("request sent without a User-Agent")
		}
		w.Write([]byte("<rss>payload</rss>"))
	}))
	defer srv.Close()

	got, err := New().Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got != "<rss>payload</rss>" {
		t.Fatalf("body = %q", got)
	}
}

func TestFetch_NonRetryableStatusFailsImmediately(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := New().Fetch(context.Background(), srv.URL)
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *Error", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d", apiErr.StatusCode)
	}
	if calls != 1 {
		t.Fatalf("404 was retried: %d calls", calls)
	}
}

func TestFetch_RetriesServerErrors(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 2 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("recovered"))
	}))
	defer srv.Close()

	got, err := New().Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got != "recovered" || calls != 2 {
		t.Fatalf("body=%q calls=%d", got, calls)
	}
}

func TestFetch_ContextCancelStopsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := New().Fetch(ctx, srv.URL)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Fatal("cancellation did not interrupt the backoff wait")
	}
}

func TestBackoffDelay(t *testing.T) {
	if d := backoffDelay(1, nil); d != time.Second {
		t.Fatalf("attempt 1 = %v", d)
	}
	if d := backoffDelay(3, nil); d != 4*time.Second {
		t.Fatalf("attempt 3 = %v", d)
	}
	rateLimited := &Error{StatusCode: 429, retryAfter: "7"}
	if d := backoffDelay(1, rateLimited); d != 7*time.Second {
		t.Fatalf("Retry-After override = %v", d)
	}
	malformed := &Error{StatusCode: 429, retryAfter: "soon"}
	if d := backoffDelay(2, malformed); d != 2*time.Second {
		t.Fatalf("malformed Retry-After should fall back to backoff: %v", d)
	}
}
