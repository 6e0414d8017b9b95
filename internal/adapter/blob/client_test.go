package blob

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/prygl-status-service/internal/cache"
)

const testToken = "blob-rw-token"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClient_List(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "prygl-status/", r.URL.Query().Get("prefix"))
		assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))

		_, _ = w.Write([]byte(`{"blobs":[
			{"pathname":"prygl-status/latest.json","url":"https://blobs.example.com/abc123"}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testToken, testLogger())
	objects, err := c.List(context.Background(), "prygl-status/")
	require.NoError(t, err)

	require.Len(t, objects, 1)
	assert.Equal(t, "prygl-status/latest.json", objects[0].Pathname)
	assert.Equal(t, "https://blobs.example.com/abc123", objects[0].URL)
}

func TestClient_Download(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/abc123", r.URL.Path)
		_, _ = w.Write([]byte(`{"generatedAt":"2026-01-17T09:30:00Z"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testToken, testLogger())
	payload, err := c.Download(context.Background(), srv.URL+"/abc123")
	require.NoError(t, err)
	assert.JSONEq(t, `{"generatedAt":"2026-01-17T09:30:00Z"}`, string(payload))
}

func TestClient_Put(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/prygl-status/latest.json", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, `{"k":"v"}`, string(body))

		_, _ = w.Write([]byte(`{"url":"https://blobs.example.com/def456"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testToken, testLogger())
	obj, err := c.Put(context.Background(), "prygl-status/latest.json", []byte(`{"k":"v"}`))
	require.NoError(t, err)

	assert.Equal(t, cache.Object{
		Pathname: "prygl-status/latest.json",
		URL:      "https://blobs.example.com/def456",
	}, obj)
}

func TestClient_Put_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("token expired"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "stale-token", testLogger())
	_, err := c.Put(context.Background(), "prygl-status/latest.json", []byte("{}"))
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "token expired", apiErr.Body)
}

func TestClient_NoTokenNoAuthHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"blobs":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", testLogger())
	objects, err := c.List(context.Background(), "prygl-status/")
	require.NoError(t, err)
	assert.Empty(t, objects)
}
