package core

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an evaluation failure.
type ErrorKind string

// Error kinds. Every kind is terminal: the pipeline aborts on the first one.
const (
	KindQueryStructure    ErrorKind = "QueryStructureError"
	KindWhereStructure    ErrorKind = "WhereStructureError"
	KindUnknownAttribute  ErrorKind = "UnknownAttributeError"
	KindAmbiguousAttr     ErrorKind = "AmbiguousAttributeError"
	KindUnknownTable      ErrorKind = "UnknownTableError"
	KindUnsupportedFunc   ErrorKind = "UnsupportedFunctionError"
	KindAggregateMix      ErrorKind = "AggregateMixError"
	KindMultipleAggregate ErrorKind = "MultipleAggregateError"
	KindEmptyQuery        ErrorKind = "EmptyQueryError"
	KindMetadataRead      ErrorKind = "MetadataReadError"
	KindTableData         ErrorKind = "TableDataError"
	KindJoinExecution     ErrorKind = "JoinExecutionError"
)

// Error is the error type returned by every evaluation stage.
type Error struct {
	Kind    ErrorKind
	Message string
	// Err is an optional underlying cause.
	Err error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind, so the sentinels
// below match any error of their kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Message == ""
}

// Sentinels for errors.Is checks.
var (
	ErrQueryStructure    = &Error{Kind: KindQueryStructure}
	ErrWhereStructure    = &Error{Kind: KindWhereStructure}
	ErrUnknownAttribute  = &Error{Kind: KindUnknownAttribute}
	ErrAmbiguousAttr     = &Error{Kind: KindAmbiguousAttr}
	ErrUnknownTable      = &Error{Kind: KindUnknownTable}
	ErrUnsupportedFunc   = &Error{Kind: KindUnsupportedFunc}
	ErrAggregateMix      = &Error{Kind: KindAggregateMix}
	ErrMultipleAggregate = &Error{Kind: KindMultipleAggregate}
	ErrEmptyQuery        = &Error{Kind: KindEmptyQuery}
	ErrMetadataRead      = &Error{Kind: KindMetadataRead}
	ErrTableData         = &Error{Kind: KindTableData}
	ErrJoinExecution     = &Error{Kind: KindJoinExecution}
)

// Errorf builds an *Error of the given kind.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error of the given kind around cause.
func Wrap(kind ErrorKind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
