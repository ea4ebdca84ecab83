package netx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/docvault/internal/common"
)

func TestPutPresigned_Success(t *testing.T) {
	var gotBody int64
	var gotMethod, gotContentType string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		gotBody = r.ContentLength
		w.Header().Set("ETag", `"abc123"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	etag, err := PutPresigned(context.Background(), srv.Client(), srv.URL, "text/plain", []byte("hello"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if etag != "abc123" {
		t.Fatalf("want unquoted etag abc123, got %q", etag)
	}
	if gotMethod != http.MethodPut || gotContentType != "text/plain" || gotBody != 5 {
		t.Fatalf("unexpected request: %s %s %d", gotMethod, gotContentType, gotBody)
	}
}

func TestPutPresigned_ExpiredURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := PutPresigned(context.Background(), srv.Client(), srv.URL, "", []byte("x"), nil)
	if !errors.Is(err, common.ErrCredentialExpired) {
		t.Fatalf("want ErrCredentialExpired, got %v", err)
	}
}

func TestPutPresigned_ReportsProgress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	payload := make([]byte, 64*1024)
	var total int64
	_, err := PutPresigned(context.Background(), srv.Client(), srv.URL, "", payload, func(n int64) { total += n })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != int64(len(payload)) {
		t.Fatalf("progress total = %d, want %d", total, len(payload))
	}
}
