package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"golang.org/x/oauth2"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Config{
		BaseURL:     srv.URL,
		TokenSource: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token"}),
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		wantErr bool
	}{
		{"valid https URL", "https://api.example.com", false},
		{"valid http URL", "http://localhost:8080", false},
		{"empty URL", "", true},
		{"missing scheme", "api.example.com", true},
		{"unsupported scheme", "ftp://api.example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(Config{BaseURL: tt.baseURL})
			if (err != nil) != tt.wantErr {
				t.Errorf("New(%q) error = %v, wantErr %v", tt.baseURL, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrValidation) {
				t.Errorf("New(%q) error = %v, want a validation error", tt.baseURL, err)
			}
		})
	}
}

func TestClientSendsBearerToken(t *testing.T) {
	var gotAuth atomic.Value
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items": []}`))
	})

	if _, err := c.ListFiles(context.Background(), "db", "asset"); err != nil {
		t.Fatalf("ListFiles failed: %v", err)
	}
	if got := gotAuth.Load(); got != "Bearer test-token" {
		t.Errorf("Authorization = %q, want bearer token", got)
	}
}

func TestErrorTaxonomy(t *testing.T) {
	tests := []struct {
		status   int
		sentinel error
	}{
		{http.StatusBadRequest, ErrValidation},
		{http.StatusUnauthorized, ErrAuthentication},
		{http.StatusForbidden, ErrAuthentication},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusTooManyRequests, ErrThrottled},
		{http.StatusInternalServerError, ErrServer},
		{http.StatusServiceUnavailable, ErrServer},
	}

	for _, tt := range tests {
		err := newAPIError(tt.status, "boom")
		if !errors.Is(err, tt.sentinel) {
			t.Errorf("newAPIError(%d) = %v, want errors.Is %v", tt.status, err, tt.sentinel)
		}
		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.StatusCode != tt.status {
			t.Errorf("newAPIError(%d) did not carry its status code", tt.status)
		}
	}
}

func TestDoMapsErrorResponses(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message": "asset not found"}`))
	})

	_, err := c.GetAsset(context.Background(), "db", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetAsset error = %v, want ErrNotFound", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatal("error does not carry the API error detail")
	}
	if apiErr.Message != "asset not found" {
		t.Errorf("Message = %q, want the server's message", apiErr.Message)
	}
}

func TestClientRetriesThrottledCalls(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items": []}`))
	})

	if _, err := c.ListFiles(context.Background(), "db", "asset"); err != nil {
		t.Fatalf("ListFiles failed after throttle: %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("server saw %d calls, want 2 (one throttled, one retried)", got)
	}
}

func TestInitializeUploadRejectsEmptyID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"files": []}`))
	})

	_, err := c.InitializeUpload(context.Background(), InitializeUploadRequest{
		DatabaseID: "db", AssetID: "a", UploadType: "assetFile",
	})
	if err == nil {
		t.Fatal("expected an error for a response without an upload id")
	}
}

func TestCompleteUpload503MeansAsyncSuccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	resp, err := c.CompleteUpload(context.Background(), "upload-1", CompleteUploadRequest{
		DatabaseID: "db", AssetID: "a", UploadType: "assetFile",
	})
	if err != nil {
		t.Fatalf("CompleteUpload returned error for 503: %v", err)
	}
	if !resp.AsynchronousProcessing || !resp.OverallSuccess {
		t.Errorf("503 response = %+v, want asynchronous success", resp)
	}
	if resp.UploadID != "upload-1" {
		t.Errorf("UploadID = %q, want upload-1", resp.UploadID)
	}
}

func TestListFilesFollowsPagination(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("startingToken") == "" {
			w.Write([]byte(`{"items": [{"relativePath": "a.bin", "fileSize": 10}], "nextToken": "t2"}`))
			return
		}
		w.Write([]byte(`{"items": [{"relativePath": "b.bin", "fileSize": 20}]}`))
	})

	files, err := c.ListFiles(context.Background(), "db", "asset")
	if err != nil {
		t.Fatalf("ListFiles failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2 across pages", len(files))
	}
	if files[0].RelativePath != "a.bin" || files[1].RelativePath != "b.bin" {
		t.Errorf("unexpected page order: %+v", files)
	}
}
