package command

import (
	"net/http"

	"github.com/goliatone/go-custody/core"
	goerrors "github.com/goliatone/go-errors"
)

func commandDependencyError(message string) error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(core.CustodyErrorInternal)
}

func commandValidationError(field string, message string) error {
	return goerrors.NewValidation("command: validation failed", goerrors.FieldError{
		Field:   field,
		Message: message,
	}).
		WithCode(http.StatusBadRequest).
		WithTextCode(core.CustodyErrorBadInput).
		WithSeverity(goerrors.SeverityError)
}

func requireAddress(field string, value core.Address) error {
	if value == core.ZeroAddress {
		return commandValidationError(field, "must not be the zero address")
	}
	return nil
}

func requireAmount(field string, value core.Amount) error {
	if value.IsZero() {
		return commandValidationError(field, "must be greater than zero")
	}
	return nil
}
