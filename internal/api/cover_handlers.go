package api

import (
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/comixapp/comix-server/internal/http/response"
)

// handleGetCover serves a comic's cover image directly, outside the JSON
// envelope. Covers are immutable for a given content hash, so aggressive
// caching is safe.
// GET /api/v1/comics/{id}/cover.
func (s *Server) handleGetCover(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Comic ID is required", s.logger)
		return
	}

	if !s.covers.Exists(id) {
		response.NotFound(w, "Cover not found for this comic", s.logger)
		return
	}

	fileInfo, err := os.Stat(s.covers.Path(id))
	if err != nil {
		s.logger.Error("failed to stat cover file", "comic_id", id, "error", err)
		response.InternalError(w, "Failed to retrieve cover", s.logger)
		return
	}

	hash, err := s.covers.Hash(id)
	if err != nil {
		s.logger.Error("failed to compute cover hash", "comic_id", id, "error", err)
		response.InternalError(w, "Failed to retrieve cover", s.logger)
		return
	}
	etag := `"` + hash + `"`

	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	data, err := s.covers.Get(id)
	if err != nil {
		s.logger.Error("failed to read cover file", "comic_id", id, "error", err)
		response.InternalError(w, "Failed to retrieve cover", s.logger)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "public, max-age=604800") // 1 week
	w.Header().Set("ETag", etag)
	w.Header().Set("Last-Modified", fileInfo.ModTime().UTC().Format(http.TimeFormat))

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Error("failed to write cover response", "comic_id", id, "error", err)
	}
}
