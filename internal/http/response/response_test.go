package response

import (
	"encoding/json/v2"
	"net/http"
	"net/http/httptest"
	"testing"

	domainerrors "github.com/comixapp/comix-server/internal/errors"
	"github.com/comixapp/comix-server/internal/store"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()

	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func TestSuccessEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, map[string]string{"id": "cmx-1"}, nil)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if !env.Success {
		t.Error("success should be true")
	}
	if env.Error != "" {
		t.Errorf("error = %q", env.Error)
	}
}

func TestErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	NotFound(rec, "comic not found", nil)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Success {
		t.Error("success should be false")
	}
	if env.Error != "comic not found" {
		t.Errorf("error = %q", env.Error)
	}
}

func TestHandleErrorMapsStoreError(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, store.ErrNotFound.WithMessage("no such comic"), nil)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestHandleErrorMapsDomainError(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, domainerrors.Validation("bad sort"), nil)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestHandleErrorUnknownIs500(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, http.ErrBodyNotAllowed, nil)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rec.Code)
	}
}
