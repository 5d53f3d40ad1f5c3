package ledger

import (
	"errors"
	"fmt"
)

// Kind classifies a ledger failure. The request layer maps kinds to
// status codes; messages are safe to show to staff.
type Kind string

const (
	KindInvalidInput         Kind = "invalid_input"
	KindDuplicateAccount     Kind = "duplicate_account"
	KindDuplicateAsset       Kind = "duplicate_asset"
	KindAuthenticationFailed Kind = "authentication_failed"
	KindAlreadyLoaned        Kind = "already_loaned"
	KindAlreadyAvailable     Kind = "already_available"
	KindAssetNotFound        Kind = "asset_not_found"
	KindUnderMaintenance     Kind = "under_maintenance"
	KindStorageFailure       Kind = "storage_failure"
)

// Error is the only error type returned by Ledger operations.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind so callers can compare against the sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrInvalidInput         = &Error{Kind: KindInvalidInput, Message: "invalid input"}
	ErrDuplicateAccount     = &Error{Kind: KindDuplicateAccount, Message: "account already exists"}
	ErrDuplicateAsset       = &Error{Kind: KindDuplicateAsset, Message: "device already registered"}
	ErrAuthenticationFailed = &Error{Kind: KindAuthenticationFailed, Message: "invalid handle or password"}
	ErrAlreadyLoaned        = &Error{Kind: KindAlreadyLoaned, Message: "device is already on loan"}
	ErrAlreadyAvailable     = &Error{Kind: KindAlreadyAvailable, Message: "device is already available"}
	ErrAssetNotFound        = &Error{Kind: KindAssetNotFound, Message: "device not found"}
	ErrUnderMaintenance     = &Error{Kind: KindUnderMaintenance, Message: "device is under maintenance"}
	ErrStorageFailure       = &Error{Kind: KindStorageFailure, Message: "storage failure, nothing was changed"}
)

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func storageFailure(err error) *Error {
	return &Error{Kind: KindStorageFailure, Message: ErrStorageFailure.Message, Err: err}
}

// KindOf returns the kind carried by err, or KindStorageFailure for foreign
// errors. A nil error has no kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return KindStorageFailure
}

// Result is the outcome of a mutating operation.
type Result struct {
	OK      bool   `json:"ok"`
	Kind    Kind   `json:"kind,omitempty"`
	Message string `json:"message"`
}

func succeeded(format string, args ...any) Result {
	return Result{OK: true, Message: fmt.Sprintf(format, args...)}
}

func failed(err *Error) (Result, error) {
	return Result{OK: false, Kind: err.Kind, Message: err.Message}, err
}
