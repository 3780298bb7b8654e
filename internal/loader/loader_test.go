// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

//go:build (linux || darwin || freebsd || windows) && (amd64 || arm64) && !dylib.no_dl

package loader

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// systemLibrary returns a library present on every supported target along
// with a function it exports.
func systemLibrary(t *testing.T) (path, symbol string) {
	switch runtime.GOOS {
	case "linux":
		return "libc.so.6", "strlen"
	case "darwin":
		return "/usr/lib/libSystem.B.dylib", "strlen"
	case "freebsd":
		return "libc.so.7", "strlen"
	case "windows":
		return "kernel32.dll", "GetTickCount"
	default:
		t.Skipf("no known system library for %s", runtime.GOOS)
		return "", ""
	}
}

func TestOpenResolveClose(t *testing.T) {
	require.True(t, Supported)
	path, symbol := systemLibrary(t)

	handle, err := Open(path)
	require.NoError(t, err)
	require.NotZero(t, handle)

	require.NotZero(t, Resolve(handle, symbol))
	require.Zero(t, Resolve(handle, "go_dylib_no_such_symbol"))
	// Lookups are case-sensitive.
	require.Zero(t, Resolve(handle, "STRLEN_go_dylib"))

	require.NoError(t, Close(handle))
}

func TestOpenMissing(t *testing.T) {
	handle, err := Open("libgo-dylib-does-not-exist.so")
	require.Error(t, err)
	require.Zero(t, handle)
}

func TestSelf(t *testing.T) {
	path, symbol := systemLibrary(t)

	// Make sure the library is mapped before looking it up process-wide.
	handle, err := Open(path)
	require.NoError(t, err)
	defer Close(handle)

	self, err := Self()
	require.NoError(t, err)
	if runtime.GOOS == "windows" {
		// The main module does not re-export kernel32.
		require.NotZero(t, self)
		return
	}
	require.NotZero(t, Resolve(self, symbol))
}

func TestRegisterFunc(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("strlen is not exported by kernel32")
	}
	path, _ := systemLibrary(t)
	handle, err := Open(path)
	require.NoError(t, err)
	defer Close(handle)

	var strlen func(string) uintptr
	RegisterFunc(&strlen, Resolve(handle, "strlen"))
	require.Equal(t, uintptr(13), strlen("Hello, world!"))

	require.Panics(t, func() {
		var notAFunc int
		RegisterFunc(&notAFunc, Resolve(handle, "strlen"))
	})
}
