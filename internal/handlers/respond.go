package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/flatchat/backend/internal/logging"
	"github.com/flatchat/backend/internal/store"
)

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "response", payload)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status, "response", payload)
	}
}

// respondStoreError translates the store's error taxonomy into a status code
// plus the error's detail string. Corrupt-collection and unclassified errors
// surface as internal errors.
func respondStoreError(ctx context.Context, w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrInvalid):
		status = http.StatusBadRequest
	case errors.Is(err, store.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrConflict):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		logging.FromContext(ctx).Error("store operation failed", "error", err)
		respondJSON(ctx, w, status, map[string]string{"error": "internal error"})
		return
	}
	respondJSON(ctx, w, status, map[string]string{"error": err.Error()})
}
