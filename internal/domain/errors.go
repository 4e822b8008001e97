package domain

import "errors"

// ErrNotFound is returned by repositories when a row does not exist. Services
// translate it into the matching business error.
var ErrNotFound = errors.New("not found")

type ErrorCode string

const (
	CodeUserNotFound               ErrorCode = "USER_NOT_FOUND"
	CodeUserMismatch               ErrorCode = "USER_MISMATCH"
	CodeAccountNotFound            ErrorCode = "ACCOUNT_NOT_FOUND"
	CodeAccountCancelled           ErrorCode = "ACCOUNT_CANCELLED"
	CodeInsufficientBalance        ErrorCode = "INSUFFICIENT_BALANCE"
	CodeAmountBelowMinimum         ErrorCode = "AMOUNT_BELOW_MINIMUM"
	CodeAmountAboveMaximum         ErrorCode = "AMOUNT_ABOVE_MAXIMUM"
	CodeTransactionNotFound        ErrorCode = "TRANSACTION_NOT_FOUND"
	CodeTransactionAccountMismatch ErrorCode = "TRANSACTION_ACCOUNT_MISMATCH"
	CodeTransactionAmountMismatch  ErrorCode = "TRANSACTION_AMOUNT_MISMATCH"
	CodeLockUnavailable            ErrorCode = "LOCK_UNAVAILABLE"
	CodeTooManyAccounts            ErrorCode = "TOO_MANY_ACCOUNTS"
	CodeAccountHasBalance          ErrorCode = "ACCOUNT_HAS_BALANCE"
)

// Error is a business failure with a stable code. Values are compared by
// identity, so callers match them with errors.Is against the sentinels below.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string { return e.Message }

var (
	ErrUserNotFound               = &Error{CodeUserNotFound, "user not found"}
	ErrUserMismatch               = &Error{CodeUserMismatch, "account does not belong to user"}
	ErrAccountNotFound            = &Error{CodeAccountNotFound, "account not found"}
	ErrAccountCancelled           = &Error{CodeAccountCancelled, "account is closed"}
	ErrInsufficientBalance        = &Error{CodeInsufficientBalance, "insufficient balance"}
	ErrAmountBelowMinimum         = &Error{CodeAmountBelowMinimum, "amount is below the minimum transaction amount"}
	ErrAmountAboveMaximum         = &Error{CodeAmountAboveMaximum, "amount exceeds the maximum transaction amount"}
	ErrTransactionNotFound        = &Error{CodeTransactionNotFound, "transaction not found"}
	ErrTransactionAccountMismatch = &Error{CodeTransactionAccountMismatch, "transaction account number does not match"}
	ErrTransactionAmountMismatch  = &Error{CodeTransactionAmountMismatch, "transaction amount does not match"}
	ErrLockUnavailable            = &Error{CodeLockUnavailable, "account is in use by another request"}
	ErrTooManyAccounts            = &Error{CodeTooManyAccounts, "user has reached the maximum number of accounts"}
	ErrAccountHasBalance          = &Error{CodeAccountHasBalance, "account still has a balance"}
)

// AsError returns the business error wrapped in err, if any.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsBusiness reports whether err carries a business error code.
func IsBusiness(err error) bool {
	_, ok := AsError(err)
	return ok
}
