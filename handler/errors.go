package handler

import (
	"errors"
	"fmt"
)

// Code is a stable rejection cause for programmatic handling.
//
// A rejection is always terminal for its transaction; the codes only
// categorize why, they do not change how the surrounding ledger treats it.
// Callers should branch on Code rather than matching message strings.
type Code string

const (
	CodeMissingField  Code = "MISSING_FIELD"
	CodeMalformed     Code = "MALFORMED"
	CodeUnauthorized  Code = "UNAUTHORIZED"
	CodeNotFound      Code = "NOT_FOUND"
	CodeRule          Code = "RULE_VIOLATION"
	CodeUnknownAction Code = "UNKNOWN_ACTION"
)

// Rejection is the single error kind used to abort a transaction.
//
// Message is intended for humans; do not match on it.
type Rejection struct {
	Code    Code
	Message string
}

func (e *Rejection) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

func reject(code Code, format string, args ...any) error {
	return &Rejection{Code: code, Message: fmt.Sprintf(format, args...)}
}

// IsRejection reports whether err is (or wraps) a *Rejection.
func IsRejection(err error) bool {
	var e *Rejection
	return errors.As(err, &e)
}

// RejectionCode returns the stable Code of a rejection, or "" if err is not
// one.
func RejectionCode(err error) Code {
	var e *Rejection
	if !errors.As(err, &e) {
		return ""
	}
	return e.Code
}
