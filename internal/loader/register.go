// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

//go:build (linux || darwin || freebsd || windows) && (amd64 || arm64) && !dylib.no_dl

package loader

import "github.com/ebitengine/purego"

// Supported is true when this build has a working platform loader.
const Supported = true

// RegisterFunc makes the func pointed to by fptr call the C function at addr.
// The signature of *fptr is trusted blindly: nothing can check it against the
// native definition. It panics when fptr does not point to a func or when the
// signature uses types purego cannot marshal.
func RegisterFunc(fptr any, addr uintptr) {
	tracef("RegisterFunc(%T, 0x%x)", fptr, addr)
	purego.RegisterFunc(fptr, addr)
}
