package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomasbasham/minigame-publish/internal/manifest"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.html"), []byte("<html>a</html>"), 0o644))

	m := manifest.Manifest{
		{Name: "a.html", LocalPath: filepath.Join(dir, "a.html")},
		{Name: "b.html", LocalPath: filepath.Join(dir, "b.html")},
	}
	srv := httptest.NewServer(New(m, "X", "mini-games", "").Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestServeObject(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/X/mini-games/a.html")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html", resp.Header.Get("Content-Type"))
	assert.Equal(t, "public, max-age=3600", resp.Header.Get("Cache-Control"))
	assert.Equal(t, "<html>a</html>", string(body))
}

func TestServeObject_NotFound(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{
		"/X/mini-games/b.html",     // in manifest, missing on disk
		"/X/mini-games/other.html", // not in manifest
		"/Y/mini-games/a.html",     // wrong bucket
		"/X/a.html",                // wrong folder
	} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}
}

func TestManifest(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/manifest")
	require.NoError(t, err)
	defer resp.Body.Close()

	var entries []manifestEntry
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	require.Len(t, entries, 2)

	assert.Equal(t, "a.html", entries[0].Name)
	assert.True(t, entries[0].Present)
	assert.Equal(t, "https://storage.googleapis.com/X/mini-games/a.html", entries[0].URLs.Direct)
	assert.Equal(t, "https://firebasestorage.googleapis.com/v0/b/X/o/mini-games%2Fa.html?alt=media", entries[0].URLs.Firebase)
	assert.Equal(t, "/X/mini-games/a.html", entries[0].Preview)
	assert.False(t, entries[1].Present)
}
