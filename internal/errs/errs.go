// Package errs defines the error taxonomy shared by descriptors, the resolver
// and the CLI actions. Callers match with errors.Is against the sentinels.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyExists reports that a package name+version is already installed.
	// Actions treat it as a skip, never as a failure.
	ErrAlreadyExists = errors.New("package already exists")
	// ErrNotFound reports a missing package, descriptor, source or file.
	ErrNotFound = errors.New("not found")
	// ErrParse reports a malformed manifest or package file.
	ErrParse = errors.New("parse error")
	// ErrArgument reports missing or invalid CLI options.
	ErrArgument = errors.New("invalid arguments")
	// ErrUnsupportedType reports a descriptor type with no implementation.
	ErrUnsupportedType = errors.New("unsupported descriptor type")
	// ErrMissingKeys reports a raw descriptor lacking keys its type requires.
	ErrMissingKeys = errors.New("descriptor missing required keys")
	// ErrInvalidLocator reports a locator the descriptor type cannot use.
	ErrInvalidLocator = errors.New("invalid locator")
)

// PackageError ties a failure to the package it happened on.
type PackageError struct {
	Op      string // "resolve", "install", "uninstall"
	Name    string
	Version string
	Err     error
}

func (e *PackageError) Error() string {
	id := e.Name
	if e.Version != "" {
		id += "-" + e.Version
	}
	return fmt.Sprintf("%s %s: %v", e.Op, id, e.Err)
}

func (e *PackageError) Unwrap() error { return e.Err }

// Kind is the coarse classification actions use to decide how to react.
type Kind int

const (
	// KindNone means no error.
	KindNone Kind = iota
	// KindSkip is recovered locally: log at debug and continue.
	KindSkip
	// KindItem aborts the current item only: log an error and continue with siblings.
	KindItem
	// KindFatal aborts the whole invocation.
	KindFatal
)

// Classify maps an error onto the reaction expected from a per-item loop.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrAlreadyExists):
		return KindSkip
	case errors.Is(err, ErrParse), errors.Is(err, ErrArgument):
		return KindFatal
	default:
		return KindItem
	}
}

// String returns the classification name.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindSkip:
		return "skip"
	case KindItem:
		return "item"
	case KindFatal:
		return "fatal"
	default:
		return "unknown"
	}
}
