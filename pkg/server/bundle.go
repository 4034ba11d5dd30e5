package server

import (
	"crypto/sha256"
	"fmt"
	"net/http"
	"strings"
)

func bundleETag(js []byte) string {
	sum := sha256.Sum256(js)
	return fmt.Sprintf("%q", fmt.Sprintf("%x", sum[:]))
}

// serveBundle serves the client bundle with ETag revalidation.
func (s *Server) serveBundle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("ETag", s.bundleETag)
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if s.config.DevMode {
		w.Header().Set("Cache-Control", "no-store")
	} else {
		w.Header().Set("Cache-Control", "public, max-age=0, must-revalidate")
	}

	if etagMatches(r.Header.Get("If-None-Match"), s.bundleETag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(s.bundle)
}

func etagMatches(header, etag string) bool {
	if header == "" || etag == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}
