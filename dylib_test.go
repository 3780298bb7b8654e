// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

//go:build (linux || darwin || freebsd || windows) && (amd64 || arm64) && !dylib.no_dl

package dylib

import (
	"bytes"
	stdlog "log"
	"sync/atomic"
	"testing"

	"github.com/DataDog/go-dylib/dlerrors"
	"github.com/DataDog/go-dylib/internal/log"
	"github.com/stretchr/testify/require"
)

func TestUsable(t *testing.T) {
	ok, err := Usable()
	require.True(t, ok)
	require.NoError(t, err)
}

func TestOpen(t *testing.T) {
	path := systemLibrary(t)

	for _, policy := range []Policy{ManualUnload, UnloadOnDestruct} {
		t.Run(policy.String(), func(t *testing.T) {
			lib := openLibrary(t, path, policy)
			require.True(t, lib.Valid())
			require.Equal(t, path, lib.Path())
			require.Equal(t, policy, lib.Policy())
			require.Contains(t, lib.String(), "loaded")
			require.Contains(t, lib.String(), policy.String())
		})
	}
}

func TestOpenFailure(t *testing.T) {
	const path = "libgo-dylib-does-not-exist.so"

	lib, err := Open(path, UnloadOnDestruct)
	require.Nil(t, lib)
	require.ErrorIs(t, err, dlerrors.ErrLoadFailure)

	var loadErr *dlerrors.LoadError
	require.ErrorAs(t, err, &loadErr)
	require.Equal(t, path, loadErr.Path)
	require.Error(t, loadErr.Err)
	require.Contains(t, err.Error(), path)
}

func TestOpenInvalidOption(t *testing.T) {
	lib, err := Open(systemLibrary(t), ManualUnload, WithUnloadHook(nil))
	require.Nil(t, lib)
	require.EqualError(t, err, "unload hook cannot be nil")
}

func TestUnload(t *testing.T) {
	path := systemLibrary(t)
	var unloads atomic.Int32

	lib, err := Open(path, ManualUnload, WithUnloadHook(func(p string) {
		require.Equal(t, path, p)
		unloads.Add(1)
	}))
	require.NoError(t, err)
	require.True(t, lib.Valid())

	require.NoError(t, lib.Unload())
	require.False(t, lib.Valid())
	require.Contains(t, lib.String(), "unloaded")
	require.Equal(t, int32(1), unloads.Load())

	t.Run("idempotent", func(t *testing.T) {
		require.NoError(t, lib.Unload())
		require.NoError(t, lib.Unload())
		require.False(t, lib.Valid())
		require.Equal(t, int32(1), unloads.Load())
	})
}

func TestDeadLibraryAccess(t *testing.T) {
	path := systemLibrary(t)
	lib, err := Open(path, UnloadOnDestruct)
	require.NoError(t, err)

	_, err = lib.Symbol("strlen")
	require.NoError(t, err)
	require.NoError(t, lib.Unload())

	requireDead := func(t *testing.T, err error) {
		t.Helper()
		require.ErrorIs(t, err, dlerrors.ErrDeadLibrary)
		require.ErrorIs(t, err, &dlerrors.DeadLibraryError{Path: path})
		require.NotErrorIs(t, err, dlerrors.ErrUnknownSymbol)
		require.Contains(t, err.Error(), path)
	}

	// Both exported and missing symbols report the dead library.
	for _, name := range []string{"strlen", "NoSuchSymbol"} {
		t.Run(name, func(t *testing.T) {
			addr, err := lib.Symbol(name)
			require.Zero(t, addr)
			requireDead(t, err)

			fn, err := Function[func(string) uintptr](lib, name)
			require.Nil(t, fn)
			requireDead(t, err)

			ptr, err := Global[int32](lib, name)
			require.Nil(t, ptr)
			requireDead(t, err)

			_, err = ReadGlobal[int32](lib, name)
			requireDead(t, err)

			var api struct {
				Fn uintptr `dlsym:"strlen"`
			}
			requireDead(t, Bind(lib, &api))
		})
	}
}

func TestUnknownSymbol(t *testing.T) {
	path := systemLibrary(t)
	lib := openLibrary(t, path, ManualUnload)

	requireUnknown := func(t *testing.T, err error) {
		t.Helper()
		require.ErrorIs(t, err, dlerrors.ErrUnknownSymbol)
		require.ErrorIs(t, err, &dlerrors.UnknownSymbolError{Symbol: "NoSuchSymbol", Path: path})
		require.EqualError(t, err, "symbol 'NoSuchSymbol' in library '"+path+"' does not exist")
	}

	addr, err := lib.Symbol("NoSuchSymbol")
	require.Zero(t, addr)
	requireUnknown(t, err)

	fn, err := Function[func() int32](lib, "NoSuchSymbol")
	require.Nil(t, fn)
	requireUnknown(t, err)

	ptr, err := Global[int64](lib, "NoSuchSymbol")
	require.Nil(t, ptr)
	requireUnknown(t, err)

	_, err = ReadGlobal[int64](lib, "NoSuchSymbol")
	requireUnknown(t, err)

	// Lookups are exact and case-sensitive.
	_, err = lib.Symbol("STRLEN")
	require.ErrorIs(t, err, &dlerrors.UnknownSymbolError{Symbol: "STRLEN"})

	require.True(t, lib.Valid())
}

func TestFunction(t *testing.T) {
	lib := openLibrary(t, systemLibrary(t), ManualUnload)

	strlen, err := Function[func(string) uintptr](lib, "strlen")
	require.NoError(t, err)
	require.Equal(t, uintptr(13), strlen("Hello, world!"))
	require.Equal(t, uintptr(0), strlen(""))

	abs, err := Function[func(int32) int32](lib, "abs")
	require.NoError(t, err)
	require.Equal(t, int32(42), abs(-42))

	// Resolving the same symbol again yields an equivalent function.
	again, err := Function[func(string) uintptr](lib, "strlen")
	require.NoError(t, err)
	require.Equal(t, uintptr(3), again("abc"))
}

func TestFunctionInvalidType(t *testing.T) {
	lib := openLibrary(t, systemLibrary(t), ManualUnload)

	_, err := Function[int](lib, "strlen")
	var typeErr *dlerrors.InvalidTypeError
	require.ErrorAs(t, err, &typeErr)
	require.Equal(t, "strlen", typeErr.Symbol)
	require.Equal(t, "int", typeErr.Type)

	// purego refuses channels as arguments: the panic is turned into an error.
	_, err = Function[func(chan int)](lib, "strlen")
	var panicErr *dlerrors.PanicError
	require.ErrorAs(t, err, &panicErr)

	require.True(t, lib.Valid())
}

func TestOpenSelf(t *testing.T) {
	// Keep the C runtime mapped so its symbols are visible process-wide.
	lib := openLibrary(t, systemLibrary(t), ManualUnload)
	_, err := lib.Symbol("strlen")
	require.NoError(t, err)

	self, err := OpenSelf()
	require.NoError(t, err)
	require.Equal(t, "<self>", self.Path())
	require.Equal(t, ManualUnload, self.Policy())
	require.True(t, self.Valid())
	require.NotContains(t, Loaded(), "<self>")

	_, err = self.Symbol("NoSuchSymbol")
	require.ErrorIs(t, err, &dlerrors.UnknownSymbolError{Symbol: "NoSuchSymbol", Path: "<self>"})

	require.NoError(t, self.Unload())
	_, err = self.Symbol("strlen")
	require.ErrorIs(t, err, dlerrors.ErrDeadLibrary)

	// The library opened explicitly is unaffected.
	require.True(t, lib.Valid())
}

func TestPolicyNamed(t *testing.T) {
	for name, want := range map[string]Policy{
		"manual":              ManualUnload,
		"manual-unload":       ManualUnload,
		"destruct":            UnloadOnDestruct,
		" Unload-On-Destruct": UnloadOnDestruct,
	} {
		got, ok := PolicyNamed(name)
		require.True(t, ok, name)
		require.Equal(t, want, got, name)
	}

	_, ok := PolicyNamed("sometimes")
	require.False(t, ok)
	require.Equal(t, "Policy(7)", Policy(7).String())
}

func TestLookupTrace(t *testing.T) {
	lib := openLibrary(t, systemLibrary(t), ManualUnload)

	var buf bytes.Buffer
	out := stdlog.Writer()
	stdlog.SetOutput(&buf)
	defer stdlog.SetOutput(out)
	log.SetLevel(log.LevelTrace)
	defer log.SetLevel(log.LevelWarning)

	_, err := lib.Symbol("strlen")
	require.NoError(t, err)
	require.Contains(t, buf.String(), "resolved symbol 'strlen' in library '"+lib.Path()+"' at 0x")

	// Cache hits do not reach the platform loader.
	buf.Reset()
	_, err = lib.Symbol("strlen")
	require.NoError(t, err)
	require.NotContains(t, buf.String(), "resolved symbol")
}
