// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

//go:build (linux || darwin || freebsd) && (amd64 || arm64) && !dylib.no_dl

package loader

import "github.com/ebitengine/purego"

// Libraries are always bound eagerly and their symbols made available to
// libraries loaded afterwards.
const openFlags = purego.RTLD_NOW | purego.RTLD_GLOBAL

// Open maps the shared library at path into the process.
func Open(path string) (Handle, error) {
	tracef("Dlopen(%q, 0x%x)", path, openFlags)
	handle, err := purego.Dlopen(path, openFlags)
	tracef("Dlopen(%q, 0x%x) = 0x%x, %v", path, openFlags, handle, err)
	if err != nil {
		return 0, err
	}
	if handle == 0 {
		return 0, errNullHandle
	}
	return Handle(handle), nil
}

// Self returns the RTLD_DEFAULT pseudo-handle, which searches symbols in every
// library already loaded in the process. It must never be given to [Close].
func Self() (Handle, error) {
	return Handle(purego.RTLD_DEFAULT), nil
}

// Close releases a handle returned by [Open]. It must be called at most once
// per handle.
func Close(handle Handle) error {
	tracef("Dlclose(0x%x)", handle)
	err := purego.Dlclose(uintptr(handle))
	tracef("Dlclose(0x%x) = %v", handle, err)
	return err
}

// Resolve returns the address of the exported symbol name, or 0 when the
// library exports no such symbol.
func Resolve(handle Handle, name string) uintptr {
	tracef("Dlsym(0x%x, %q)", handle, name)
	addr, err := purego.Dlsym(uintptr(handle), name)
	tracef("Dlsym(0x%x, %q) = 0x%x, %v", handle, name, addr, err)
	if err != nil {
		return 0
	}
	return addr
}
