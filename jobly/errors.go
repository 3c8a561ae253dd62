package jobly

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/lunagic/jobly/joblymodels"
	"github.com/lunagic/jobly/joblyservices/database"
	"github.com/lunagic/jobly/joblyservices/sqlbuild"
	"github.com/lunagic/poseidon/poseidon"
)

var ErrUnauthorized = errors.New("unauthorized")

// ErrBadRequest wraps a request body that could not be decoded.
type ErrBadRequest struct {
	Err error
}

func (err ErrBadRequest) Error() string {
	return "invalid request body: " + err.Err.Error()
}

func (err ErrBadRequest) Unwrap() error {
	return err.Err
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func statusFor(err error) int {
	invalidFilter := sqlbuild.ErrInvalidFilter{}
	validation := joblymodels.ErrValidation{}
	badRequest := ErrBadRequest{}

	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, joblymodels.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, database.ErrDuplicateKey):
		return http.StatusConflict
	case errors.Is(err, sqlbuild.ErrEmptyPayload),
		errors.Is(err, joblymodels.ErrDuplicateJob),
		errors.As(err, &invalidFilter),
		errors.As(err, &validation),
		errors.As(err, &badRequest):
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

func (app *App) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status != http.StatusInternalServerError {
		poseidon.RespondJSON(w, status, ErrorResponse{Error: err.Error()})
		return
	}

	attributes := []any{
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	}
	if claims, ok := ClaimsFromContext(r.Context()); ok {
		attributes = append(attributes, slog.String("username", claims.Username))
	}

	app.logger.ErrorContext(r.Context(), "Request Failed", attributes...)

	poseidon.RespondJSON(w, status, ErrorResponse{Error: "something went wrong"})
}
