// Package server serves the manifest's local bundles over HTTP at the same
// paths they will have on storage.googleapis.com, so a client app can be
// pointed at a local origin before anything is published.
//
// Endpoints:
//
//	GET /manifest                   — entries, local existence and public URLs
//	GET /{bucket}/{folder}/{name}   — the bundle itself, served as text/html
package server

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/tomasbasham/minigame-publish/internal/manifest"
	"github.com/tomasbasham/minigame-publish/internal/storage"
)

// Server holds the dependencies shared across HTTP handlers.
type Server struct {
	bucket       string
	folder       string
	cacheControl string
	entries      map[string]manifest.Entry
	manifest     manifest.Manifest
	mux          *http.ServeMux
}

// New creates a Server for m. Only names in m are served.
func New(m manifest.Manifest, bucket, folder, cacheControl string) *Server {
	if cacheControl == "" {
		cacheControl = storage.DefaultCacheControl
	}

	s := &Server{
		bucket:       bucket,
		folder:       folder,
		cacheControl: cacheControl,
		entries:      make(map[string]manifest.Entry, len(m)),
		manifest:     m,
	}
	for _, e := range m {
		s.entries[storage.ObjectPath(folder, e.Name)] = e
	}

	s.mux = http.NewServeMux()
	s.mux.HandleFunc("GET /manifest", s.handleManifest)
	s.mux.HandleFunc("GET /{bucket}/{object...}", s.handleObject)

	return s
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return srv.ListenAndServe()
}

// manifestEntry is one element of the GET /manifest response.
type manifestEntry struct {
	Name    string             `json:"name"`
	Present bool               `json:"present"`
	URLs    storage.PublicURLs `json:"urls"`
	Preview string             `json:"preview"`
}

func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	entries := make([]manifestEntry, 0, len(s.manifest))
	for _, st := range s.manifest.Check() {
		entries = append(entries, manifestEntry{
			Name:    st.Entry.Name,
			Present: st.Exists,
			URLs:    storage.URLsFor(s.bucket, s.folder, st.Entry.Name),
			Preview: "/" + s.bucket + "/" + storage.ObjectPath(s.folder, st.Entry.Name),
		})
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleObject(w http.ResponseWriter, r *http.Request) {
	if r.PathValue("bucket") != s.bucket {
		writeError(w, http.StatusNotFound, "no such bucket")
		return
	}

	e, ok := s.entries[r.PathValue("object")]
	if !ok {
		writeError(w, http.StatusNotFound, "no such object")
		return
	}

	f, err := os.Open(e.LocalPath)
	if err != nil {
		writeError(w, http.StatusNotFound, "file not found: "+e.Name)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		writeError(w, http.StatusNotFound, "file not found: "+e.Name)
		return
	}

	w.Header().Set("Content-Type", storage.ContentTypeHTML)
	w.Header().Set("Cache-Control", s.cacheControl)
	http.ServeContent(w, r, e.Name, info.ModTime(), f)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
