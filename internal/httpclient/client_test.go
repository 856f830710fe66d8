package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewRequestPostCarriesBody(t *testing.T) {
	headers, err := CanonicalHeaders(DefaultHeaders())
	if err != nil {
		t.Fatalf("CanonicalHeaders() error = %v", err)
	}

	req, err := NewRequest(context.Background(), "post", "http://example.com/api", `{"hello":"world"}`, headers)
	if err != nil {
		t.Fatalf("expected request, got error: %v", err)
	}

	if req.Method != http.MethodPost {
		t.Fatalf("expected method POST, got %s", req.Method)
	}
	if req.Header.Get("Content-Type") != ContentTypeJSON {
		t.Fatalf("expected JSON content type, got %q", req.Header.Get("Content-Type"))
	}

	bodyBytes, err := io.ReadAll(req.Body)
	if err != nil {
		t.Fatalf("read body failed: %v", err)
	}
	if string(bodyBytes) != `{"hello":"world"}` {
		t.Fatalf("unexpected body %q", string(bodyBytes))
	}
	if req.ContentLength != int64(len(bodyBytes)) {
		t.Fatalf("expected content length %d, got %d", len(bodyBytes), req.ContentLength)
	}

	if req.GetBody == nil {
		t.Fatalf("expected request to support body replay")
	}
	replay, err := req.GetBody()
	if err != nil {
		t.Fatalf("expected replay body, got error: %v", err)
	}
	replayBytes, _ := io.ReadAll(replay)
	if string(replayBytes) != string(bodyBytes) {
		t.Fatalf("expected replay body %q, got %q", bodyBytes, replayBytes)
	}
}

func TestNewRequestGetDropsBody(t *testing.T) {
	req, err := NewRequest(context.Background(), "", "http://example.com", "ignored", nil)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	if req.Method != http.MethodGet {
		t.Fatalf("expected GET fallback, got %s", req.Method)
	}
	if req.ContentLength != 0 {
		t.Fatalf("expected no content, got length %d", req.ContentLength)
	}
	if req.Body != http.NoBody {
		t.Fatalf("expected http.NoBody for GET")
	}
}

func TestNewRequestRequiresTarget(t *testing.T) {
	if _, err := NewRequest(context.Background(), "GET", "   ", "", nil); err == nil {
		t.Fatal("expected error for empty target")
	}
}

func TestCanonicalHeadersValidation(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		wantErr bool
	}{
		{"valid", map[string]string{"content-type": "application/json"}, false},
		{"empty key", map[string]string{"": "value"}, true},
		{"newline in key", map[string]string{"Bad\nKey": "value"}, true},
		{"newline in value", map[string]string{"X-Test": "a\r\nb"}, true},
		{"empty value allowed", map[string]string{"X-Empty": ""}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CanonicalHeaders(tt.headers)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CanonicalHeaders() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && tt.name == "valid" && got.Get("Content-Type") != "application/json" {
				t.Fatalf("expected canonical key, got %v", got)
			}
		})
	}
}

func TestReadBodyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "body.json")
	if err := os.WriteFile(path, []byte(`{"id":1}`), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	body, err := ReadBodyFile(path)
	if err != nil {
		t.Fatalf("ReadBodyFile() error = %v", err)
	}
	if body != `{"id":1}` {
		t.Fatalf("unexpected body %q", body)
	}

	if _, err := ReadBodyFile(dir); err == nil || !strings.Contains(err.Error(), "directory") {
		t.Fatalf("expected directory error, got %v", err)
	}
	if _, err := ReadBodyFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestClientTimeoutApplied(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(50 * time.Millisecond)
	req, err := NewRequest(context.Background(), "GET", server.URL, "", nil)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	resp, err := client.Do(req)
	if err == nil {
		resp.Body.Close()
		t.Fatal("expected timeout error")
	}
}
