package types

import (
	"net/http"

	appErr "github.com/teamlance/engine/pkg/errors"
)

func FromAppError(err error) *APIError {
	if err == nil {
		return nil
	}
	code := string(appErr.CodeUnknown)
	if e, ok := err.(*appErr.AppError); ok {
		code = string(e.Code)
		return &APIError{Code: code, Message: e.Message}
	}
	return &APIError{Code: code, Message: err.Error()}
}

// HTTPStatus maps a structured error to its HTTP status. Conflicts and
// precondition violations map separately so the UI can distinguish "this
// opportunity was just taken" from "invalid request".
func HTTPStatus(err error) int {
	e, ok := err.(*appErr.AppError)
	if !ok {
		return http.StatusInternalServerError
	}
	switch e.Code {
	case appErr.CodeInvalid:
		return http.StatusBadRequest
	case appErr.CodeNotFound:
		return http.StatusNotFound
	case appErr.CodeConflict, appErr.CodeAlreadyExists:
		return http.StatusConflict
	case appErr.CodeFailedPrecondition:
		return http.StatusUnprocessableEntity
	case appErr.CodeUnauthorized:
		return http.StatusUnauthorized
	case appErr.CodeForbidden:
		return http.StatusForbidden
	case appErr.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
