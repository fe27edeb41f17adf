package compiler

import "fmt"

// Error is a single static error discovered while scanning or compiling:
// a scan error surfaced as a token.ERROR token, or a parse/resolution error
// raised by the compiler itself.
type Error struct {
	Line    int
	Where   string // token lexeme at the point of the error; empty at EOF and for scan errors
	Message string
}

func (e *Error) Error() string {
	if e.Where != "" {
		return fmt.Sprintf("[line %d] Error at '%s': %s", e.Line, e.Where, e.Message)
	}
	return fmt.Sprintf("[line %d] Error: %s", e.Line, e.Message)
}

// ErrorList accumulates every static error found during a single compile, so
// that compilation can report more than one error per run (§7 of the
// specification) instead of stopping at the first one. It implements
// Unwrap() []error so errors.Is/errors.As compose over the whole list.
type ErrorList []*Error

func (el ErrorList) Error() string {
	switch len(el) {
	case 0:
		return "no errors"
	case 1:
		return el[0].Error()
	default:
		return fmt.Sprintf("%s (and %d more errors)", el[0].Error(), len(el)-1)
	}
}

func (el ErrorList) Unwrap() []error {
	errs := make([]error, len(el))
	for i, e := range el {
		errs[i] = e
	}
	return errs
}
