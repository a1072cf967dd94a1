package query

import (
	"net/http"

	"github.com/goliatone/go-custody/core"
	goerrors "github.com/goliatone/go-errors"
)

const maxEventPageSize = 500

func queryDependencyError(message string) error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(core.CustodyErrorInternal)
}

func queryValidationError(field string, message string) error {
	return goerrors.NewValidation("query: validation failed", goerrors.FieldError{
		Field:   field,
		Message: message,
	}).
		WithCode(http.StatusBadRequest).
		WithTextCode(core.CustodyErrorBadInput).
		WithSeverity(goerrors.SeverityError)
}

func requireAddress(field string, value core.Address) error {
	if value == core.ZeroAddress {
		return queryValidationError(field, "must not be the zero address")
	}
	return nil
}
