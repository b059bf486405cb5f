package rpc

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sss-org/sss-engine/logger"
	"github.com/sss-org/sss-engine/types"
)

// ErrorResponse is the body of the response of a failed request.
type ErrorResponse struct {
	Kind    types.ErrorKind `json:"kind"`
	Message string          `json:"message"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any, log *slog.Logger) {
	w.Header().Set(headerContentType, applicationJson)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WarnContext(r.Context(), "failed to write response", logger.Error(err))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error, log *slog.Logger) {
	kind := types.KindOf(err)
	if kw, ok := w.(interface{ setErrorKind(types.ErrorKind) }); ok {
		kw.setErrorKind(kind)
	}
	status := httpStatus(kind)
	if status == http.StatusInternalServerError {
		log.ErrorContext(r.Context(), "request failed", logger.Error(err))
	}
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		status = http.StatusRequestEntityTooLarge
	}
	writeJSON(w, r, status, &ErrorResponse{Kind: kind, Message: err.Error()}, log)
}

// httpStatus maps the rejection kind to HTTP status code.
func httpStatus(kind types.ErrorKind) int {
	switch kind {
	case types.ErrInvalidInstruction:
		return http.StatusBadRequest
	case types.ErrUnauthorized:
		return http.StatusForbidden
	case types.ErrNotInitialized, types.ErrProposalNotFound, types.ErrBlacklistNotFound, types.ErrWhitelistNotFound:
		return http.StatusNotFound
	case types.ErrAlreadyInitialized, types.ErrAlreadyBlacklisted, types.ErrAlreadyWhitelisted,
		types.ErrAlreadyExecuted, types.ErrDuplicateApproval, types.ErrProposalCancelled, types.ErrProposalExpired:
		return http.StatusConflict
	case types.ErrInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusUnprocessableEntity
	}
}
