package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/crowdfund/crowdfund-gobackend/internal/apperr"
	"github.com/crowdfund/crowdfund-gobackend/internal/logger"
)

var errEmptyBody = errors.New("empty body")

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeAppError answers with the status and client message of err and logs
// the internal cause.
func writeAppError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error, fallback string) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		logger.For(r.Context(), log).Error(fallback, zap.Error(err))
	}
	writeError(w, status, apperr.Message(err, fallback))
}

// decodeJSON decodes the request body into v. An empty body yields
// errEmptyBody.
func decodeJSON(r *http.Request, v interface{}) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return errEmptyBody
	}
	return err
}
