package httpapi

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-formbuilder/pkg/codec"
	"github.com/goliatone/go-formbuilder/pkg/storage"
)

const maxBodyBytes = 4 << 20

// errorBody is the error envelope. detail matches what existing builder
// clients read; code is stable for programmatic checks.
type errorBody struct {
	Detail string `json:"detail"`
	Code   string `json:"code"`
	Index  *int   `json:"index,omitempty"`
	Key    string `json:"key,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Warn("httpapi: encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Detail: message, Code: code})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
}

func readBody(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	return io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
}

// writeStoreError maps repository and codec errors onto responses.
func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	var importErr *codec.ImportError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Form not found")
	case errors.Is(err, storage.ErrInvalidName):
		writeError(w, http.StatusUnprocessableEntity, "INVALID_NAME", err.Error())
	case errors.As(err, &importErr):
		body := errorBody{Detail: importErr.Error(), Code: "INVALID_SCHEMA", Key: importErr.Key}
		if importErr.Index >= 0 {
			index := importErr.Index
			body.Index = &index
		}
		writeJSON(w, http.StatusUnprocessableEntity, body)
	default:
		s.logger.Error("httpapi: internal error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
