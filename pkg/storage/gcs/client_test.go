package gcs

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func staticTokenSource(token string) *tokenSource {
	return &tokenSource{
		fetch: func(context.Context) (string, time.Time, error) {
			return token, time.Now().Add(time.Hour), nil
		},
	}
}

func clientWithTransport(rt roundTripFunc) *Client {
	return &Client{
		httpClient:    &http.Client{Transport: rt},
		defaultBucket: "archive-bucket",
		tokenSource:   staticTokenSource("test-token"),
	}
}

func TestUploadBuildsMediaRequest(t *testing.T) {
	t.Parallel()

	var captured *http.Request
	var body string
	client := clientWithTransport(func(req *http.Request) (*http.Response, error) {
		captured = req
		raw, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		body = string(raw)
		return &http.Response{
			StatusCode: http.StatusOK,
			Status:     "200 OK",
			Body:       io.NopCloser(strings.NewReader(`{}`)),
		}, nil
	})

	err := client.Upload(context.Background(), "", "imports/scope-1/batch-9/march.csv", "text/csv", []byte("Date,Amount\n"))
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	if captured.Method != http.MethodPost {
		t.Fatalf("expected POST got %s", captured.Method)
	}
	if !strings.Contains(captured.URL.Path, "/upload/storage/v1/b/archive-bucket/o") {
		t.Fatalf("unexpected path %s", captured.URL.Path)
	}
	query := captured.URL.Query()
	if query.Get("uploadType") != "media" {
		t.Fatalf("expected media upload, got %q", query.Get("uploadType"))
	}
	if query.Get("name") != "imports/scope-1/batch-9/march.csv" {
		t.Fatalf("unexpected object name %q", query.Get("name"))
	}
	if got := captured.Header.Get("Authorization"); got != "Bearer test-token" {
		t.Fatalf("unexpected authorization header %q", got)
	}
	if got := captured.Header.Get("Content-Type"); got != "text/csv" {
		t.Fatalf("unexpected content type %q", got)
	}
	if body != "Date,Amount\n" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestUploadSurfacesAPIError(t *testing.T) {
	t.Parallel()

	client := clientWithTransport(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusForbidden,
			Status:     "403 Forbidden",
			Body:       io.NopCloser(strings.NewReader(`{"error":"denied"}`)),
		}, nil
	})

	err := client.Upload(context.Background(), "", "imports/x", "text/csv", nil)
	if err == nil {
		t.Fatal("expected error for non-200 response")
	}
	if !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

func TestUploadValidation(t *testing.T) {
	t.Parallel()

	var nilClient *Client
	if err := nilClient.Upload(context.Background(), "", "object", "", nil); err == nil {
		t.Fatal("expected error for uninitialized client")
	}

	client := clientWithTransport(func(req *http.Request) (*http.Response, error) {
		t.Fatal("no request expected")
		return nil, nil
	})
	if err := client.Upload(context.Background(), "", "", "", nil); err == nil {
		t.Fatal("expected error for empty object name")
	}

	client.defaultBucket = ""
	if err := client.Upload(context.Background(), "", "object", "", nil); err == nil {
		t.Fatal("expected error for missing bucket")
	}
}

func TestTokenSourceCachesUntilExpiry(t *testing.T) {
	t.Parallel()

	calls := 0
	expiry := time.Now().Add(time.Hour)
	ts := &tokenSource{
		fetch: func(context.Context) (string, time.Time, error) {
			calls++
			return "fresh-token", expiry, nil
		},
	}

	for i := 0; i < 3; i++ {
		token, err := ts.Token(context.Background())
		if err != nil {
			t.Fatalf("token fetch failed: %v", err)
		}
		if token != "fresh-token" {
			t.Fatalf("unexpected token %q", token)
		}
	}
	if calls != 1 {
		t.Fatalf("expected one fetch for a valid token, got %d", calls)
	}

	ts.expiry = time.Now().Add(30 * time.Second)
	if _, err := ts.Token(context.Background()); err != nil {
		t.Fatalf("token refresh failed: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected refresh near expiry, got %d fetches", calls)
	}
}
