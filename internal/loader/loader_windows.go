// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

//go:build windows && (amd64 || arm64) && !dylib.no_dl

package loader

import "golang.org/x/sys/windows"

// Open maps the DLL at path into the process.
func Open(path string) (Handle, error) {
	tracef("LoadLibrary(%q)", path)
	handle, err := windows.LoadLibrary(path)
	tracef("LoadLibrary(%q) = 0x%x, %v", path, handle, err)
	if err != nil {
		return 0, err
	}
	if handle == 0 {
		return 0, errNullHandle
	}
	return Handle(handle), nil
}

// Self returns the handle of the main executable module. It must never be
// given to [Close].
func Self() (Handle, error) {
	var handle windows.Handle
	if err := windows.GetModuleHandleEx(windows.GET_MODULE_HANDLE_EX_FLAG_UNCHANGED_REFCOUNT, nil, &handle); err != nil {
		return 0, err
	}
	return Handle(handle), nil
}

// Close releases a handle returned by [Open]. It must be called at most once
// per handle.
func Close(handle Handle) error {
	tracef("FreeLibrary(0x%x)", handle)
	err := windows.FreeLibrary(windows.Handle(handle))
	tracef("FreeLibrary(0x%x) = %v", handle, err)
	return err
}

// Resolve returns the address of the exported symbol name, or 0 when the
// library exports no such symbol.
func Resolve(handle Handle, name string) uintptr {
	tracef("GetProcAddress(0x%x, %q)", handle, name)
	addr, err := windows.GetProcAddress(windows.Handle(handle), name)
	tracef("GetProcAddress(0x%x, %q) = 0x%x, %v", handle, name, addr, err)
	if err != nil {
		return 0
	}
	return addr
}
