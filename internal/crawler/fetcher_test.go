package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFetchHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>ok</html>")) //nolint:errcheck
	}))
	defer srv.Close()

	f := NewFetcher(2*time.Second, zap.NewNop())
	body, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, string(body), "ok")
}

func TestFetchRejectsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewFetcher(2*time.Second, zap.NewNop())
	_, err := f.Fetch(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestFetchRejectsContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte{1, 2, 3}) //nolint:errcheck
	}))
	defer srv.Close()

	f := NewFetcher(2*time.Second, zap.NewNop())
	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported content type")
}

func TestFetchCapsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(strings.Repeat("x", maxBodyBytes+1024))) //nolint:errcheck
	}))
	defer srv.Close()

	f := NewFetcher(5*time.Second, zap.NewNop())
	body, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, body, maxBodyBytes)
}

func TestFetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	f := NewFetcher(50*time.Millisecond, zap.NewNop())
	_, err := f.Fetch(context.Background(), srv.URL)
	assert.Error(t, err)
}
