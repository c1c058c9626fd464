package trapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testClient() *Client {
	return NewClientWithConfig(ClientConfig{
		Timeout:   5 * time.Second,
		UserAgent: "onehop-test",
	})
}

func TestPostQuery_OK(t *testing.T) {
	var gotContentType, gotUserAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"schema_version": "1.5.0",
			"biolink_version": "4.2.1",
			"message": {"knowledge_graph": {"nodes": {}, "edges": {}}, "results": []}
		}`))
	}))
	defer srv.Close()

	result, err := testClient().PostQuery(context.Background(), srv.URL, &Query{})
	if err != nil {
		t.Fatalf("PostQuery failed: %v", err)
	}
	if result.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", result.StatusCode)
	}
	if result.Response == nil || result.Response.SchemaVersion != "1.5.0" {
		t.Errorf("expected decoded envelope, got %+v", result.Response)
	}
	if gotContentType != "application/json" {
		t.Errorf("expected JSON content type, got %q", gotContentType)
	}
	if gotUserAgent != "onehop-test" {
		t.Errorf("expected custom user agent, got %q", gotUserAgent)
	}
}

func TestPostQuery_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broke", http.StatusBadGateway)
	}))
	defer srv.Close()

	result, err := testClient().PostQuery(context.Background(), srv.URL, &Query{})
	if err != nil {
		t.Fatalf("non-200 should not be a Go error, got %v", err)
	}
	if result.StatusCode != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", result.StatusCode)
	}
	if result.Response != nil {
		t.Error("expected nil Response for non-200")
	}
}

func TestPostQuery_Undecodable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	_, err := testClient().PostQuery(context.Background(), srv.URL, &Query{})
	if !errors.Is(err, ErrUndecodable) {
		t.Errorf("expected ErrUndecodable, got %v", err)
	}
}

func TestPostQuery_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := testClient().PostQuery(context.Background(), srv.URL, &Query{})
	if err == nil {
		t.Fatal("expected error for closed server")
	}
}

func TestPostQuery_ContextCancelled(t *testing.T) {
	// A full semaphore makes the call block on acquisition, so cancellation
	// must win.
	c := NewClientWithConfig(ClientConfig{Timeout: 5 * time.Second, MaxConcurrent: 1})
	c.sem <- struct{}{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.PostQuery(ctx, "http://127.0.0.1:0", &Query{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestPostQuery_RequestSpacing(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"message": {"results": []}}`))
	}))
	defer srv.Close()

	c := NewClientWithConfig(ClientConfig{
		Timeout:        5 * time.Second,
		RequestSpacing: 50 * time.Millisecond,
	})
	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := c.PostQuery(context.Background(), srv.URL, &Query{}); err != nil {
			t.Fatalf("PostQuery failed: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Errorf("three spaced requests finished in %s, spacing not enforced", elapsed)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 calls, got %d", calls.Load())
	}
}

func TestGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		w.Write([]byte(`{"fields": {"actor": 7}}`))
	}))
	defer srv.Close()

	status, raw, err := testClient().Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if status != http.StatusOK {
		t.Errorf("expected 200, got %d", status)
	}
	if string(raw) != `{"fields": {"actor": 7}}` {
		t.Errorf("unexpected body: %s", raw)
	}
}
