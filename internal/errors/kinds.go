package errors

import (
	stderrors "errors"
	"fmt"
)

type Kind string

const (
	KindValidation       Kind = "validation"
	KindRemoteCreate     Kind = "remote_create"
	KindRemoteFinalize   Kind = "remote_finalize"
	KindNotAuthenticated Kind = "not_authenticated"
	KindRemote           Kind = "remote"
)

// Validation codes used by the engine and the task client.
const (
	CodeTaskRequired     = "task_required"
	CodeSessionActive    = "session_active"
	CodeNoActiveSession  = "no_active_session"
	CodeOperationPending = "operation_pending"
	CodeEngineStopped    = "engine_stopped"
	CodeInvalidDuration  = "invalid_duration"
	CodeInvalidTask      = "invalid_task"
	CodeEmptyPatch       = "empty_patch"
)

// Error is returned by client-side operations. Op names the operation that
// failed, Code narrows validation failures.
type Error struct {
	Kind    Kind
	Op      string
	Code    string
	Message string
	// Critical is false for failures that only need logging, such as a
	// remote cancel after the local timer was already reset.
	Critical bool
	Err      error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on kind so callers can write errors.Is(err, apperrors.ErrNotAuthenticated).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code != "" && t.Code != e.Code {
		return false
	}
	return t.Kind == e.Kind
}

var ErrNotAuthenticated = &Error{Kind: KindNotAuthenticated, Message: "no active user session", Critical: true}

func Validation(op, code, message string) *Error {
	return &Error{Kind: KindValidation, Op: op, Code: code, Message: message, Critical: true}
}

func NotAuthenticated(op string) *Error {
	return &Error{Kind: KindNotAuthenticated, Op: op, Message: ErrNotAuthenticated.Message, Critical: true}
}

func RemoteCreate(op string, err error) *Error {
	return &Error{Kind: KindRemoteCreate, Op: op, Message: "could not create session", Critical: true, Err: err}
}

func RemoteFinalize(op string, err error, critical bool) *Error {
	return &Error{Kind: KindRemoteFinalize, Op: op, Message: "could not finalize session", Critical: critical, Err: err}
}

func Remote(op string, err error) *Error {
	return &Error{Kind: KindRemote, Op: op, Message: "remote request failed", Critical: true, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or "" when there
// is none.
func KindOf(err error) Kind {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

func CodeOf(err error) string {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// IsCritical reports whether err must be shown to the user. Errors that are not
// *Error are always critical.
func IsCritical(err error) bool {
	if err == nil {
		return false
	}
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr.Critical
	}
	return true
}
