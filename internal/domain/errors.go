package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a domain failure. Three kinds are enough: the transport
// layer maps them to status codes and nothing here is retried.
type Kind int

const (
	// KindNotFound covers both absent entities and entities the caller is
	// not allowed to see. The two are deliberately conflated so that
	// existence is never leaked to the wrong caller.
	KindNotFound Kind = iota
	// KindBadRequest is a violated domain invariant.
	KindBadRequest
	// KindConflict is a store-level uniqueness violation.
	KindConflict
)

type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func BadRequestf(format string, args ...any) *Error {
	return &Error{Kind: KindBadRequest, Msg: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

func isKind(err error, kind Kind) bool {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Kind == kind
	}
	return false
}

func IsNotFound(err error) bool   { return isKind(err, KindNotFound) }
func IsBadRequest(err error) bool { return isKind(err, KindBadRequest) }
func IsConflict(err error) bool   { return isKind(err, KindConflict) }
