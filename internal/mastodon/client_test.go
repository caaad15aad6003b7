package mastodon

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Options{
		BaseURL:    srv.URL,
		Token:      "secret",
		Persistent: true,
		Logger:     slog.New(slog.NewTextHandler(testWriter{t}, nil)),
		HTTPClient: srv.Client(),
	})
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func writeJSON(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(body))
}

func TestHomeTimeline(t *testing.T) {
	t.Parallel()

	var gotPath, gotQuery, gotAuth string
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, `[{"id":"3","account":{"id":"9","uri":"https://x/u/a"},"visibility":"public"}]`)
	}))

	statuses, err := c.HomeTimeline(context.Background(), "1", 20)
	if err != nil {
		t.Fatalf("HomeTimeline() error = %v", err)
	}
	if gotPath != "/api/v1/timelines/home" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotQuery != "limit=20&min_id=1" {
		t.Fatalf("query = %q", gotQuery)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("auth = %q", gotAuth)
	}
	if len(statuses) != 1 || statuses[0].ID != "3" || statuses[0].Account.URI != "https://x/u/a" {
		t.Fatalf("statuses = %+v", statuses)
	}
}

func TestHomeTimelineNoSinceID(t *testing.T) {
	t.Parallel()

	var gotQuery string
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		writeJSON(w, http.StatusOK, `[]`)
	}))

	if _, err := c.HomeTimeline(context.Background(), "", 10); err != nil {
		t.Fatalf("HomeTimeline() error = %v", err)
	}
	if gotQuery != "limit=10" {
		t.Fatalf("query = %q, want limit only", gotQuery)
	}
}

func TestGetStatusNotFound(t *testing.T) {
	t.Parallel()

	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"error":"Record not found"}`)
	}))

	_, err := c.GetStatus(context.Background(), "42")
	if err == nil {
		t.Fatal("GetStatus() expected error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T", err)
	}
	if apiErr.Kind != ErrStatus || apiErr.Code != http.StatusNotFound {
		t.Fatalf("error = %+v", apiErr)
	}
	if !IsResourceGone(err) {
		t.Fatal("IsResourceGone() = false, want true")
	}
}

func TestIsResourceGone(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"transport", &APIError{Kind: ErrTransport, Op: "x"}, false},
		{"401", &APIError{Kind: ErrStatus, Code: 401}, true},
		{"404", &APIError{Kind: ErrStatus, Code: 404}, true},
		{"500", &APIError{Kind: ErrStatus, Code: 500}, false},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := IsResourceGone(tc.err); got != tc.want {
				t.Fatalf("IsResourceGone() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDecodeRejectsWrongShape(t *testing.T) {
	t.Parallel()

	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"id":"1"}`)
	}))

	_, err := c.HomeTimeline(context.Background(), "", 10)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Kind != ErrUnexpectedResponse {
		t.Fatalf("error = %v, want unexpected_response", err)
	}
}

func TestDecodeRejectsBadContentType(t *testing.T) {
	t.Parallel()

	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`[]`))
	}))

	_, err := c.Notifications(context.Background(), 10)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Kind != ErrUnexpectedResponse {
		t.Fatalf("error = %v, want unexpected_response", err)
	}
}

func TestDecodeRejectsEmptyBody(t *testing.T) {
	t.Parallel()

	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
	}))

	_, err := c.GetStatus(context.Background(), "1")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Kind != ErrUnexpectedResponse {
		t.Fatalf("error = %v, want unexpected_response", err)
	}
}

func TestActionsIgnoreBody(t *testing.T) {
	t.Parallel()

	var gotPath, gotMethod string
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		// Mastodon action endpoints return the mutated entity; the client
		// only checks the status code.
		writeJSON(w, http.StatusOK, `{"id":"7","reblogged":true}`)
	}))

	if err := c.Reblog(context.Background(), "7"); err != nil {
		t.Fatalf("Reblog() error = %v", err)
	}
	if gotMethod != http.MethodPost || gotPath != "/api/v1/statuses/7/reblog" {
		t.Fatalf("request = %s %s", gotMethod, gotPath)
	}

	if err := c.DismissNotification(context.Background(), "12"); err != nil {
		t.Fatalf("DismissNotification() error = %v", err)
	}
	if gotPath != "/api/v1/notifications/12/dismiss" {
		t.Fatalf("path = %q", gotPath)
	}

	if err := c.DeleteStatus(context.Background(), "7"); err != nil {
		t.Fatalf("DeleteStatus() error = %v", err)
	}
	if gotMethod != http.MethodDelete || gotPath != "/api/v1/statuses/7" {
		t.Fatalf("request = %s %s", gotMethod, gotPath)
	}

	if err := c.Follow(context.Background(), "99"); err != nil {
		t.Fatalf("Follow() error = %v", err)
	}
	if gotPath != "/api/v1/accounts/99/follow" {
		t.Fatalf("path = %q", gotPath)
	}
}

func TestRateLimitSnapshot(t *testing.T) {
	t.Parallel()

	reset := time.Now().UTC().Add(5 * time.Minute).Truncate(time.Second)
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Limit", "300")
		w.Header().Set("X-RateLimit-Remaining", "42")
		w.Header().Set("X-RateLimit-Reset", reset.Format(time.RFC3339))
		writeJSON(w, http.StatusOK, `[]`)
	}))

	if rl := c.RateLimit(); rl.Known {
		t.Fatalf("RateLimit() before first call = %+v, want unknown", rl)
	}
	if _, err := c.Notifications(context.Background(), 10); err != nil {
		t.Fatalf("Notifications() error = %v", err)
	}
	rl := c.RateLimit()
	if !rl.Known || rl.Remaining != 42 {
		t.Fatalf("RateLimit() = %+v", rl)
	}
	if !rl.ResetAt.Equal(reset) {
		t.Fatalf("ResetAt = %v, want %v", rl.ResetAt, reset)
	}
}

func TestRateLimitMalformedHeadersIgnored(t *testing.T) {
	t.Parallel()

	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Remaining", "soon")
		w.Header().Set("X-RateLimit-Reset", "not-a-date")
		writeJSON(w, http.StatusOK, `[]`)
	}))

	if _, err := c.Notifications(context.Background(), 10); err != nil {
		t.Fatalf("Notifications() error = %v", err)
	}
	if rl := c.RateLimit(); rl.Known || !rl.ResetAt.IsZero() {
		t.Fatalf("RateLimit() = %+v, want untouched", rl)
	}
}

func TestParseResetDate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in string
		ok bool
	}{
		{"2026-08-29T12:00:00Z", true},
		{"2026-08-29T12:00:00.123456Z", true},
		{"2026-08-29T12:00:00+02:00", true},
		{"2026-08-29T12:00:00.123456", true},
		{"garbage", false},
		{"", false},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.in, func(t *testing.T) {
			t.Parallel()
			_, ok := parseResetDate(tc.in)
			if ok != tc.ok {
				t.Fatalf("parseResetDate(%q) ok = %v, want %v", tc.in, ok, tc.ok)
			}
		})
	}
}
