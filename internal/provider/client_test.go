package provider

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(Config{BaseURL: server.URL}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestReports(t *testing.T) {
	var gotLimit string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/posts" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotLimit = r.URL.Query().Get("_limit")
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[{"id":1,"userId":2,"title":"first","body":"b"},{"id":2,"userId":3,"title":"second","body":"b"}]`)
	}))

	reports, err := client.Reports(context.Background(), 2)
	if err != nil {
		t.Fatalf("Reports failed: %v", err)
	}
	if gotLimit != "2" {
		t.Errorf("limit query = %q, want 2", gotLimit)
	}
	if len(reports) != 2 || reports[0].Title != "first" || reports[1].AuthorID != 3 {
		t.Errorf("unexpected reports: %+v", reports)
	}
}

func TestReportsTruncatesOverfullResponse(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"id":1},{"id":2},{"id":3}]`)
	}))

	reports, err := client.Reports(context.Background(), 2)
	if err != nil {
		t.Fatalf("Reports failed: %v", err)
	}
	if len(reports) != 2 {
		t.Errorf("feed overshoot should be truncated to the limit, got %d records", len(reports))
	}
}

func TestReporters(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		io.WriteString(w, `[{"id":1,"name":"Ada Lovelace"}]`)
	}))

	reporters, err := client.Reporters(context.Background())
	if err != nil {
		t.Fatalf("Reporters failed: %v", err)
	}
	if len(reporters) != 1 || reporters[0].Name != "Ada Lovelace" {
		t.Errorf("unexpected reporters: %+v", reporters)
	}
}

func TestErrorStatus(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broken", http.StatusBadGateway)
	}))

	if _, err := client.Reports(context.Background(), 5); err == nil {
		t.Error("non-2xx status should surface an error")
	}
	if _, err := client.Reporters(context.Background()); err == nil {
		t.Error("non-2xx status should surface an error")
	}
}

func TestMalformedBody(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"not": "a list"`)
	}))

	if _, err := client.Reports(context.Background(), 5); err == nil {
		t.Error("malformed payload should surface a decode error")
	}
}
