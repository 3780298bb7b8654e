// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Build when the target OS or architecture are not supported
//go:build !((linux || darwin || freebsd || windows) && (amd64 || arm64)) || dylib.no_dl

package loader

import (
	"errors"
	"fmt"
	"runtime"
)

// Supported is true when this build has a working platform loader.
const Supported = false

var errUnsupported = fmt.Errorf("no platform loader for %s/%s", runtime.GOOS, runtime.GOARCH)

func Open(string) (Handle, error) {
	return 0, errUnsupported
}

func Self() (Handle, error) {
	return 0, errUnsupported
}

func Close(Handle) error {
	return errUnsupported
}

func Resolve(Handle, string) uintptr {
	return 0
}

func RegisterFunc(any, uintptr) {
	panic(errors.Join(errUnsupported, errors.New("cannot register functions")))
}
