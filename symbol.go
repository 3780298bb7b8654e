// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package dylib

import (
	"reflect"
	"runtime"
	"time"
	"unsafe"

	"github.com/DataDog/go-dylib/dlerrors"
	"github.com/DataDog/go-dylib/internal/loader"
	"github.com/DataDog/go-dylib/internal/log"
)

// Symbol returns the raw address of the exported symbol name. It fails with a
// [dlerrors.DeadLibraryError] once the library is unloaded, and with a
// [dlerrors.UnknownSymbolError] when the library exports no such symbol.
func (lib *Library) Symbol(name string) (uintptr, error) {
	lib.state.mu.RLock()
	defer lib.state.mu.RUnlock()
	return lib.lookup(name)
}

// lookup must be called with lib.state.mu held for reading.
func (lib *Library) lookup(name string) (uintptr, error) {
	s := lib.state
	if !s.valid {
		return 0, &dlerrors.DeadLibraryError{Path: lib.path}
	}

	s.stats.lookups.Inc()
	if s.symbols != nil {
		if addr, ok := s.symbols.Load(name); ok {
			s.stats.cacheHits.Inc()
			return addr.(uintptr), nil
		}
	}

	start := time.Now()
	addr := loader.Resolve(s.handle, name)
	s.stats.timers.add(resolveTimer, time.Since(start))
	if addr == 0 {
		s.stats.misses.Inc()
		log.Debugf("symbol '%s' not found in library '%s'", name, lib.path)
		return 0, &dlerrors.UnknownSymbolError{Symbol: name, Path: lib.path}
	}

	log.Tracef("resolved symbol '%s' in library '%s' at 0x%x", name, lib.path, addr)
	if s.symbols != nil {
		s.symbols.Store(name, addr)
	}
	return addr, nil
}

// Function returns a Go function of type F calling the exported function name.
// F must be a func type matching the native signature exactly, arguments and
// return value included: the export table carries no type information, so a
// mismatch cannot be detected and calling the result is undefined behavior.
//
// Strings are passed as NUL-terminated C strings, and the supported argument
// and return types are the ones of [github.com/ebitengine/purego.RegisterFunc].
// The returned function must not be called after the library is unloaded.
// With [UnloadOnDestruct], it keeps lib reachable for as long as it is
// itself reachable, so the library cannot be collected while it is in use.
func Function[F any](lib *Library, name string) (F, error) {
	var fn F
	addr, err := lib.Symbol(name)
	if err != nil {
		return fn, err
	}

	if typ := reflect.TypeFor[F](); typ.Kind() != reflect.Func {
		return fn, &dlerrors.InvalidTypeError{Symbol: name, Type: typ.String()}
	}

	if err := tryCall(func() error {
		loader.RegisterFunc(&fn, addr)
		return nil
	}); err != nil {
		return fn, err
	}
	if lib.policy == UnloadOnDestruct {
		fn = pinned(lib, reflect.ValueOf(fn)).Interface().(F)
	}
	return fn, nil
}

// pinned wraps the native function fn so that every call keeps lib alive
// until the native code returns.
func pinned(lib *Library, fn reflect.Value) reflect.Value {
	call := fn.Call
	if fn.Type().IsVariadic() {
		call = fn.CallSlice
	}
	return reflect.MakeFunc(fn.Type(), func(args []reflect.Value) []reflect.Value {
		results := call(args)
		runtime.KeepAlive(lib)
		return results
	})
}

// Global returns a pointer to the exported variable name, read and written as
// a T. The pointer refers to the library memory: it dangles as soon as the
// library is unloaded and must not be retained past [Library.Unload].
//
// The pointer does not keep lib reachable. With [UnloadOnDestruct], the caller
// must keep lib alive, for instance with [runtime.KeepAlive], for as long as
// the pointer is used.
func Global[T any](lib *Library, name string) (*T, error) {
	addr, err := lib.Symbol(name)
	if err != nil {
		return nil, err
	}
	return pointerTo[T](addr), nil
}

// ReadGlobal returns a copy of the current value of the exported variable
// name, read as a T.
func ReadGlobal[T any](lib *Library, name string) (T, error) {
	var value T
	// Hold the lock while copying so the library cannot be unloaded under us.
	lib.state.mu.RLock()
	defer lib.state.mu.RUnlock()

	addr, err := lib.lookup(name)
	if err != nil {
		return value, err
	}
	return *pointerTo[T](addr), nil
}

// pointerTo converts a native address into a Go pointer.
func pointerTo[T any](addr uintptr) *T {
	// We take the address and then dereference it to trick go vet from creating a possible misuse of unsafe.Pointer
	return (*T)(*(*unsafe.Pointer)(unsafe.Pointer(&addr)))
}
