package handler

import (
	"net/http"

	"github.com/josh-kwaku/account-ledger/internal/domain"
)

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrInvalidRequest   = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrValidationFailed = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"}
	ErrResourceNotFound = &AppError{http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found"}
	ErrInternalError    = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}
)

var domainStatus = map[domain.ErrorCode]int{
	domain.CodeUserNotFound:               http.StatusNotFound,
	domain.CodeAccountNotFound:            http.StatusNotFound,
	domain.CodeTransactionNotFound:        http.StatusNotFound,
	domain.CodeUserMismatch:               http.StatusForbidden,
	domain.CodeAccountCancelled:           http.StatusUnprocessableEntity,
	domain.CodeInsufficientBalance:        http.StatusUnprocessableEntity,
	domain.CodeAmountBelowMinimum:         http.StatusUnprocessableEntity,
	domain.CodeAmountAboveMaximum:         http.StatusUnprocessableEntity,
	domain.CodeTransactionAccountMismatch: http.StatusUnprocessableEntity,
	domain.CodeTransactionAmountMismatch:  http.StatusUnprocessableEntity,
	domain.CodeTooManyAccounts:            http.StatusUnprocessableEntity,
	domain.CodeAccountHasBalance:          http.StatusUnprocessableEntity,
	domain.CodeLockUnavailable:            http.StatusConflict,
}

func fromDomain(e *domain.Error) *AppError {
	status, ok := domainStatus[e.Code]
	if !ok {
		status = http.StatusUnprocessableEntity
	}
	return &AppError{Status: status, Code: string(e.Code), Message: e.Message}
}
