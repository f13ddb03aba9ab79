package httpx

import (
	"errors"
	"net/http"

	"github.com/liftsplit/liftsplit/internal/repository"
	"github.com/liftsplit/liftsplit/internal/service/auth"
	"github.com/liftsplit/liftsplit/internal/validation"
)

// writeServiceError maps service and repository errors onto HTTP responses.
// notFound is the message used when the record is absent or owned by someone else.
func (r *Router) writeServiceError(w http.ResponseWriter, req *http.Request, err error, notFound string) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		writeValidationError(w, verr)
	case errors.Is(err, repository.ErrUsernameTaken):
		writeError(w, http.StatusBadRequest, repository.ErrUsernameTaken.Error())
	case errors.Is(err, repository.ErrEmailTaken):
		writeError(w, http.StatusBadRequest, repository.ErrEmailTaken.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeUnauthorized(w, auth.ErrInvalidCredentials.Error())
	case errors.Is(err, auth.ErrUnauthorized):
		writeUnauthorized(w, auth.ErrUnauthorized.Error())
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, notFound)
	default:
		r.logger.Error("request failed", "error", err, "method", req.Method, "path", req.URL.Path)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
