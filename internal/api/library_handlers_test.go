package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLibrary(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/library")
	require.Equal(t, http.StatusOK, resp.Code)

	envelope := decodeEnvelope[LibraryResponse](t, resp.Body.Bytes())
	assert.Equal(t, "idle", envelope.Data.State)
	assert.NotEmpty(t, envelope.Data.Path)
}

func TestDeleteComics(t *testing.T) {
	ts := setupTestServer(t)
	comic := ts.addComic(t, "Bone")

	resp := ts.api.Post("/api/v1/library/delete", map[string]any{
		"comic_ids": []string{comic.ID},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	got := ts.api.Get("/api/v1/comics/" + comic.ID)
	assert.Equal(t, http.StatusNotFound, got.Code)
}

func TestDeleteComicsNoIDs(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/library/delete", map[string]any{
		"comic_ids": []string{},
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestAddComicsRejectsUnknownMode(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/library/add", map[string]any{
		"paths": []string{"/tmp/whatever.cbz"},
		"mode":  "symlink",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
}

func TestAddComicsAccepted(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/library/add", map[string]any{
		"paths": []string{"/tmp/a.cbz", "/tmp/b.cbz"},
		"mode":  "link",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	envelope := decodeEnvelope[AddAcceptedResponse](t, resp.Body.Bytes())
	assert.Equal(t, 2, envelope.Data.Accepted)
}

func TestSyncLibraryAccepted(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/library/sync")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	envelope := decodeEnvelope[SyncAcceptedResponse](t, resp.Body.Bytes())
	assert.True(t, envelope.Data.Accepted)

	// The sync runs against an empty library directory and settles quickly.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		state := ts.api.Get("/api/v1/library")
		env := decodeEnvelope[LibraryResponse](t, state.Body.Bytes())
		if env.Data.State == "idle" {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("library never returned to idle after sync")
}
