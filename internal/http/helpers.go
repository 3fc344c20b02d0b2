package http

import (
	"errors"
	"net/http"

	"budget/internal/auth"
	"budget/internal/core"
	applog "budget/internal/log"
	"budget/internal/storage"
)

// ownerID returns the authenticated caller. Routes that call it are always
// wrapped by auth.Middleware.
func ownerID(r *http.Request) string {
	id, _ := auth.IdentityFrom(r.Context())
	return id.UserID
}

// writeServiceError maps a service error onto a response. Validation
// errors carry their own message; store failures are logged and answered
// with failMsg so internals never reach the client.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg, failMsg, operation string) {
	switch {
	case errors.Is(err, errMalformedJSON):
		BadRequestError("Invalid JSON body").Write(w)
	case core.IsValidation(err):
		BadRequestError(validationMessage(err)).Write(w)
	case errors.Is(err, storage.ErrNotFound):
		NotFoundError(notFoundMsg).Write(w)
	default:
		logger := applog.FromContext(r.Context())
		applog.NewStructuredLogger(logger).LogError(r.Context(), failMsg, err, applog.ComponentHTTP, operation,
			applog.NewFields().
				WithUser(ownerID(r)).
				WithErrorType(applog.ErrorTypeDatabase))
		InternalError(failMsg).Write(w)
	}
}

// validationMessage returns the sentinel's text without wrapping prefixes.
func validationMessage(err error) string {
	for _, target := range []error{
		core.ErrInvalidAmount, core.ErrInvalidKind, core.ErrInvalidDate,
		core.ErrMissingCategory, core.ErrCategoryTooLong, core.ErrUnknownCategory,
		core.ErrDuplicateCategory, core.ErrEmptyFullName,
	} {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	// Profile errors name the offending field.
	return err.Error()
}
