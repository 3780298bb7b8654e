// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package dylib loads native shared libraries at runtime and resolves the
// functions and global variables they export into typed Go values.
//
// A [Library] is either unloaded explicitly with [Library.Unload], or, when
// opened with the [UnloadOnDestruct] policy, automatically once it becomes
// unreachable. Any access to an unloaded library fails with a
// [dlerrors.DeadLibraryError], and a missing symbol is reported as a
// [dlerrors.UnknownSymbolError].
package dylib

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/DataDog/go-dylib/dlerrors"
	"github.com/DataDog/go-dylib/internal/embed"
	"github.com/DataDog/go-dylib/internal/loader"
	"github.com/DataDog/go-dylib/internal/log"
)

// Policy tells what happens to the native library once its [Library] handle
// is no longer referenced.
type Policy int

const (
	// ManualUnload keeps the native library loaded until [Library.Unload] is
	// called. A handle dropped without calling it leaks the library, which is
	// the desired behavior when the library must outlive the handle.
	ManualUnload Policy = iota
	// UnloadOnDestruct unloads the native library once the [Library] handle
	// has been garbage collected, unless it was already unloaded. Functions
	// returned by [Function] and [Bind] keep their Library reachable; raw
	// addresses and [Global] pointers do not.
	UnloadOnDestruct
)

// PolicyNamed returns the policy corresponding to the given name, and false if
// the name corresponds to no known policy.
func PolicyNamed(name string) (Policy, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "manual", "manual-unload":
		return ManualUnload, true
	case "destruct", "unload-on-destruct":
		return UnloadOnDestruct, true
	default:
		return ManualUnload, false
	}
}

func (p Policy) String() string {
	switch p {
	case ManualUnload:
		return "manual-unload"
	case UnloadOnDestruct:
		return "unload-on-destruct"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// selfPath is the path reported by a library opened with [OpenSelf].
const selfPath = "<self>"

// Library is one loaded native library. It is safe for concurrent use: symbol
// lookups may briefly block behind an in-progress [Library.Unload].
type Library struct {
	path    string
	policy  Policy
	state   *libState
	cleanup runtime.Cleanup
}

// libState holds everything that must survive the [Library] for the
// UnloadOnDestruct cleanup to run. It must never reference its Library.
type libState struct {
	path string

	// Guards valid, handle and symbols. Lookups hold it for reading while
	// using the handle, unload holds it for writing.
	mu     sync.RWMutex
	valid  bool
	handle loader.Handle
	// pseudo handles, such as the one of OpenSelf, are never closed.
	pseudo bool
	// nil when the symbol cache is disabled or the library is unloaded.
	symbols *sync.Map

	// Extra resources to release after the native handle, such as the file
	// backing a library opened with OpenBytes.
	release  func() error
	onUnload func(path string)

	stats stats
}

// Open loads the shared library at path using the platform loader search rules
// and returns a valid [Library]. It fails with a [dlerrors.LoadError] when the
// operating system cannot load it.
func Open(path string, policy Policy, opts ...Option) (*Library, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}
	return open(path, path, policy, cfg)
}

// OpenBytes loads a shared library from its content, which may be
// gzip-compressed. The name is used in errors and as the base name of the file
// the content is written to; the file is released when the library is
// unloaded.
func OpenBytes(name string, data []byte, policy Policy, opts ...Option) (_ *Library, err error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}
	if ok, err := Usable(); !ok {
		return nil, err
	}

	file, closer, err := embed.Dump(name, data)
	if err != nil {
		return nil, &dlerrors.LoadError{Path: name, Err: err}
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, closer())
		}
	}()

	cfg.release = closer
	return open(name, file, policy, cfg)
}

// OpenSelf returns a [Library] resolving symbols from the whole process: the
// executable and every library already loaded in it. Unloading it only
// invalidates the handle.
func OpenSelf(opts ...Option) (*Library, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}
	if ok, err := Usable(); !ok {
		return nil, err
	}

	handle, err := loader.Self()
	if err != nil {
		return nil, &dlerrors.LoadError{Path: selfPath, Err: err}
	}

	log.Tracef("process image handle is 0x%x", handle)
	state := newState(selfPath, handle, cfg)
	state.pseudo = true
	return &Library{path: selfPath, policy: ManualUnload, state: state}, nil
}

func open(path, file string, policy Policy, cfg config) (*Library, error) {
	if ok, err := Usable(); !ok {
		return nil, err
	}

	start := time.Now()
	handle, err := loader.Open(file)
	if err != nil {
		log.Debugf("cannot load library '%s': %v", path, err)
		return nil, &dlerrors.LoadError{Path: path, Err: err}
	}

	state := newState(path, handle, cfg)
	state.stats.timers.add(loadTimer, time.Since(start))
	registry.add(state)
	log.Debugf("loaded library '%s' (%s)", path, policy)

	lib := &Library{path: path, policy: policy, state: state}
	if policy == UnloadOnDestruct {
		lib.cleanup = runtime.AddCleanup(lib, (*libState).destruct, state)
	}
	return lib, nil
}

func newState(path string, handle loader.Handle, cfg config) *libState {
	state := &libState{
		path:     path,
		valid:    true,
		handle:   handle,
		release:  cfg.release,
		onUnload: cfg.onUnload,
	}
	if !cfg.noCache {
		state.symbols = new(sync.Map)
	}
	return state
}

// Path returns the path or name the library was opened with.
func (lib *Library) Path() string {
	return lib.path
}

// Policy returns the unload policy of the library.
func (lib *Library) Policy() Policy {
	return lib.policy
}

// Valid reports whether the library is still loaded. Once false, it never
// becomes true again.
func (lib *Library) Valid() bool {
	lib.state.mu.RLock()
	defer lib.state.mu.RUnlock()
	return lib.state.valid
}

func (lib *Library) String() string {
	status := "loaded"
	if !lib.Valid() {
		status = "unloaded"
	}
	return fmt.Sprintf("dylib.Library(%q, %s, %s)", lib.path, lib.policy, status)
}

// Unload releases the native library. Every function or global previously
// obtained from it must no longer be used. Unload is idempotent: calls after
// the first one do nothing. The library is invalidated even when the platform
// loader reports an error, which is then returned.
func (lib *Library) Unload() error {
	if lib.policy == UnloadOnDestruct {
		lib.cleanup.Stop()
	}
	return lib.state.unload()
}

func (s *libState) unload() error {
	s.mu.Lock()
	if !s.valid {
		s.mu.Unlock()
		return nil
	}

	s.valid = false
	s.symbols = nil
	handle := s.handle
	s.handle = 0

	var err error
	if !s.pseudo {
		if closeErr := loader.Close(handle); closeErr != nil {
			err = fmt.Errorf("error unloading library '%s': %w", s.path, closeErr)
		}
		registry.remove(s)
	}
	if s.release != nil {
		err = errors.Join(err, s.release())
		s.release = nil
	}
	onUnload := s.onUnload
	s.mu.Unlock()

	log.Debugf("unloaded library '%s'", s.path)
	if onUnload != nil {
		onUnload(s.path)
	}
	return err
}

// destruct runs once the Library of an UnloadOnDestruct state is unreachable.
func (s *libState) destruct() {
	if err := s.unload(); err != nil {
		log.Errorf("%v", err)
	}
}
