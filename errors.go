package nufft

import "errors"

// Error is the error type returned by this package. Every failure mode
// carries a stable integer code so bindings and callers that switch on
// numeric results keep working across releases; use errors.Is against the
// exported sentinels for Go-native checks.
type Error struct {
	code int
	msg  string
}

func (e *Error) Error() string { return "nufft: " + e.msg }

// Code returns the stable integer code of the error.
func (e *Error) Code() int { return e.code }

// Stable error codes. Zero means success; positive values are failures.
const (
	CodeOK                = 0
	CodeEpsTooSmall       = 1
	CodeMaxAlloc          = 2
	CodeSpreadBounds      = 4
	CodeSpreadAlloc       = 5
	CodeSpreadDir         = 6
	CodeUpsampFacTooSmall = 7
	CodeNTransNotValid    = 9
	CodeTypeNotValid      = 10
	CodeAlloc             = 11
	CodeDimNotValid       = 12
	CodeThreadScheme      = 13
	CodeNotReady          = 14
	CodeBadInput          = 15
)

// Sentinel errors. Returned errors may wrap these with extra context, so
// compare with errors.Is.
var (
	ErrEpsTooSmall       = &Error{CodeEpsTooSmall, "requested tolerance too small to achieve"}
	ErrMaxAlloc          = &Error{CodeMaxAlloc, "fine grid exceeds maximum allowed size"}
	ErrSpreadBounds      = &Error{CodeSpreadBounds, "nonuniform point outside [-3pi, 3pi]"}
	ErrSpreadAlloc       = &Error{CodeSpreadAlloc, "spreader allocation failed"}
	ErrSpreadDir         = &Error{CodeSpreadDir, "invalid spread direction"}
	ErrUpsampFacTooSmall = &Error{CodeUpsampFacTooSmall, "upsampling factor must exceed 1"}
	ErrNTransNotValid    = &Error{CodeNTransNotValid, "number of transforms must be at least 1"}
	ErrTypeNotValid      = &Error{CodeTypeNotValid, "transform type must be 1, 2 or 3"}
	ErrAlloc             = &Error{CodeAlloc, "allocation failed"}
	ErrDimNotValid       = &Error{CodeDimNotValid, "dimension must be 1, 2 or 3"}
	ErrThreadScheme      = &Error{CodeThreadScheme, "invalid spread thread scheme"}
	ErrNotReady          = &Error{CodeNotReady, "execute called before set points"}
	ErrBadInput          = &Error{CodeBadInput, "invalid argument"}
)

// ErrCode extracts the stable code from an error returned by this
// package: 0 for nil, the embedded code for wrapped *Error values, and
// CodeBadInput for anything else.
func ErrCode(err error) int {
	if err == nil {
		return CodeOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.code
	}
	return CodeBadInput
}
