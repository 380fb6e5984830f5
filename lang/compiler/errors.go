package compiler

import "fmt"

// Kind identifies the category of a compilation error, independent of the
// human-readable message.
type Kind int

const (
	_ Kind = iota
	ParseFailure
	ArityMismatch
	UseBeforeInit
	ReservedName
	ImmediateOutOfRange
	DuplicateLabelPosition
	NonNegatableJump
	UnsupportedOperand
)

func (k Kind) String() string {
	switch k {
	case ParseFailure:
		return "ParseFailure"
	case ArityMismatch:
		return "ArityMismatch"
	case UseBeforeInit:
		return "UseBeforeInit"
	case ReservedName:
		return "ReservedName"
	case ImmediateOutOfRange:
		return "ImmediateOutOfRange"
	case DuplicateLabelPosition:
		return "DuplicateLabelPosition"
	case NonNegatableJump:
		return "NonNegatableJump"
	case UnsupportedOperand:
		return "UnsupportedOperand"
	}
	return "UnknownError"
}

// Error is a compilation failure detected anywhere in the pipeline. It
// always names the offending symbol so the message is actionable without
// cross-referencing source.
type Error struct {
	Kind    Kind
	Symbol  string
	Wrapped error // set only for ParseFailure, wraps the parser/scanner error
}

func (e *Error) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Symbol, e.Wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Symbol)
}

func (e *Error) Unwrap() error { return e.Wrapped }

func newErr(kind Kind, symbol string) error {
	return &Error{Kind: kind, Symbol: symbol}
}

func newErrf(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Symbol: fmt.Sprintf(format, args...)}
}
