package core

import (
	"fmt"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	CustodyErrorBadInput                   = "CUSTODY_BAD_INPUT"
	CustodyErrorInvalidRegistry            = "CUSTODY_INVALID_REGISTRY"
	CustodyErrorUnregisteredCollateral     = "CUSTODY_UNREGISTERED_COLLATERAL"
	CustodyErrorWrongAsset                 = "CUSTODY_WRONG_ASSET"
	CustodyErrorAlreadyDeposited           = "CUSTODY_ALREADY_DEPOSITED"
	CustodyErrorNotDeposited               = "CUSTODY_NOT_DEPOSITED"
	CustodyErrorTransferNotAuthorized      = "CUSTODY_TRANSFER_NOT_AUTHORIZED"
	CustodyErrorInsufficientClaimBalance   = "CUSTODY_INSUFFICIENT_CLAIM_BALANCE"
	CustodyErrorInsufficientClaimAllowance = "CUSTODY_INSUFFICIENT_CLAIM_ALLOWANCE"
	CustodyErrorMissingRole                = "CUSTODY_MISSING_ROLE"
	CustodyErrorPaused                     = "CUSTODY_PAUSED"
	CustodyErrorNotPaused                  = "CUSTODY_NOT_PAUSED"
	CustodyErrorReentrantCall              = "CUSTODY_REENTRANT_CALL"
	CustodyErrorUnsolicitedTransfer        = "CUSTODY_UNSOLICITED_TRANSFER"
	CustodyErrorNotFound                   = "CUSTODY_NOT_FOUND"
	CustodyErrorUnauthorized               = "CUSTODY_UNAUTHORIZED"
	CustodyErrorStateConflict              = "CUSTODY_STATE_CONFLICT"
	CustodyErrorInternal                   = "CUSTODY_INTERNAL_ERROR"
)

// ErrorKind is the coarse failure taxonomy of every custody operation.
type ErrorKind string

const (
	ErrorKindNone          ErrorKind = ""
	ErrorKindValidation    ErrorKind = "validation"
	ErrorKindAuthorization ErrorKind = "authorization"
	ErrorKindState         ErrorKind = "state"
	ErrorKindInternal      ErrorKind = "internal"
)

func ErrorKindOf(err error) ErrorKind {
	if err == nil {
		return ErrorKindNone
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return ErrorKindInternal
	}
	switch rich.Category {
	case goerrors.CategoryValidation, goerrors.CategoryBadInput, goerrors.CategoryNotFound:
		return ErrorKindValidation
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return ErrorKindAuthorization
	case goerrors.CategoryOperation, goerrors.CategoryConflict:
		return ErrorKindState
	default:
		return ErrorKindInternal
	}
}

// HasErrorCode reports whether err carries the given stable text code.
func HasErrorCode(err error, textCode string) bool {
	if err == nil {
		return false
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return false
	}
	return rich.TextCode == textCode
}

func validationError(message string, textCode string, metadata map[string]any) *goerrors.Error {
	return custodyError(message, goerrors.CategoryValidation, http.StatusBadRequest, textCode, metadata)
}

func badInputError(message string, metadata map[string]any) *goerrors.Error {
	return custodyError(message, goerrors.CategoryBadInput, http.StatusBadRequest, CustodyErrorBadInput, metadata)
}

func authorizationError(message string, textCode string, metadata map[string]any) *goerrors.Error {
	return custodyError(message, goerrors.CategoryAuthz, http.StatusForbidden, textCode, metadata)
}

func stateError(message string, textCode string, metadata map[string]any) *goerrors.Error {
	return custodyError(message, goerrors.CategoryOperation, http.StatusConflict, textCode, metadata)
}

func custodyError(
	message string,
	category goerrors.Category,
	code int,
	textCode string,
	metadata map[string]any,
) *goerrors.Error {
	err := goerrors.New(message, category).
		WithCode(code).
		WithTextCode(textCode)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func missingRoleError(component string, role Role, account Address, action string) *goerrors.Error {
	return authorizationError(
		fmt.Sprintf("%s: must have %s role to %s", component, RoleName(role), action),
		CustodyErrorMissingRole,
		map[string]any{
			"role":    RoleName(role),
			"account": account.Hex(),
		},
	)
}

func zeroAddressError(component string, field string) *goerrors.Error {
	return badInputError(
		fmt.Sprintf("%s: %s is the zero address", component, field),
		map[string]any{"field": field},
	)
}

func serviceErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureServiceErrorEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "registry"):
		return newServiceError(err.Error(), goerrors.CategoryValidation, CustodyErrorInvalidRegistry)
	case strings.Contains(msg, "not found"):
		return newServiceError(err.Error(), goerrors.CategoryNotFound, CustodyErrorNotFound)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"), strings.Contains(msg, "mismatch"):
		return newServiceError(err.Error(), goerrors.CategoryBadInput, CustodyErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureServiceErrorEnvelope(mapped)
}

func newServiceError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureServiceErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureServiceErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = serviceHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultServiceTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultServiceTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return CustodyErrorBadInput
	case goerrors.CategoryNotFound:
		return CustodyErrorNotFound
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return CustodyErrorUnauthorized
	case goerrors.CategoryOperation, goerrors.CategoryConflict:
		return CustodyErrorStateConflict
	default:
		return CustodyErrorInternal
	}
}

func serviceHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryOperation, goerrors.CategoryConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
