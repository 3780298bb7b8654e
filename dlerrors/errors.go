// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package dlerrors holds the error kinds returned by go-dylib.
package dlerrors

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"
)

// Sentinel values matching the typed errors below through [errors.Is].
var (
	ErrDeadLibrary   = errors.New("dead library access")
	ErrUnknownSymbol = errors.New("unknown symbol")
	ErrLoadFailure   = errors.New("library load failure")
)

// DeadLibraryError is returned when a library is accessed after having been
// unloaded. The library can no longer be used and retrying is pointless.
type DeadLibraryError struct {
	Path string
}

func (e *DeadLibraryError) Error() string {
	return fmt.Sprintf("library '%s' was accessed after being unloaded", e.Path)
}

// Is reports ErrDeadLibrary and any other DeadLibraryError as matching.
func (e *DeadLibraryError) Is(target error) bool {
	if target == ErrDeadLibrary {
		return true
	}
	other, ok := target.(*DeadLibraryError)
	return ok && (other.Path == "" || other.Path == e.Path)
}

// UnknownSymbolError is returned when a symbol is not exported by a library.
type UnknownSymbolError struct {
	Symbol string
	Path   string
}

func (e *UnknownSymbolError) Error() string {
	return fmt.Sprintf("symbol '%s' in library '%s' does not exist", e.Symbol, e.Path)
}

// Is reports ErrUnknownSymbol as matching, as well as any UnknownSymbolError
// whose non-empty fields equal the ones of e.
func (e *UnknownSymbolError) Is(target error) bool {
	if target == ErrUnknownSymbol {
		return true
	}
	other, ok := target.(*UnknownSymbolError)
	return ok && (other.Symbol == "" || other.Symbol == e.Symbol) && (other.Path == "" || other.Path == e.Path)
}

// LoadError is returned when the operating system refuses to load a library.
// Err holds the reason reported by the platform loader.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("cannot load library '%s'", e.Path)
	}
	return fmt.Sprintf("cannot load library '%s': %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func (e *LoadError) Is(target error) bool {
	return target == ErrLoadFailure
}

// InvalidTypeError is returned when a symbol is requested as a Go type it
// cannot be bound to, such as a function with a non-func type parameter.
type InvalidTypeError struct {
	Symbol string
	Type   string
}

func (e *InvalidTypeError) Error() string {
	return fmt.Sprintf("cannot bind symbol '%s' to a value of type %s", e.Symbol, e.Type)
}

// UnsupportedTargetError is returned when the current OS/architecture has no
// platform loader.
type UnsupportedTargetError struct {
	OS   string
	Arch string
}

func (e UnsupportedTargetError) Error() string {
	return fmt.Sprintf("the target operating-system %s or architecture %s are not supported", e.OS, e.Arch)
}

// ManuallyDisabledError is returned when the module was built with the
// `dylib.no_dl` build tag.
type ManuallyDisabledError struct{}

func (ManuallyDisabledError) Error() string {
	return "dynamic loading was manually disabled using the `dylib.no_dl` go build tag"
}

// PanicError is an error type wrapping a recovered panic value that happened
// during a function call. Such error must be considered unrecoverable and be
// used to try to gracefully abort. Keeping using the library after such an
// error is unreliable.
type PanicError struct {
	// The function that was given to `Call()`.
	In func() error
	// The recovered panic value while executing `In()`.
	Err error
}

// NewPanicError wraps err, recovered while running in.
func NewPanicError(in func() error, err error) *PanicError {
	return &PanicError{
		In:  in,
		Err: err,
	}
}

// Unwrap the error and return it.
// Required by errors.Is and errors.As functions.
func (e *PanicError) Unwrap() error {
	return e.Err
}

// Error returns the error string representation.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic while executing %s: %#+v", e.inName(), e.Err)
}

func (e *PanicError) inName() string {
	return runtime.FuncForPC(reflect.ValueOf(e.In).Pointer()).Name()
}
