// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

//go:build !((linux || darwin || freebsd || windows) && (amd64 || arm64))

package support_test

import (
	"runtime"
	"testing"

	"github.com/DataDog/go-dylib/dlerrors"
	"github.com/DataDog/go-dylib/internal/support"
	"github.com/stretchr/testify/require"
)

func TestUnsupportedPlatform(t *testing.T) {
	errs := support.Errors()
	require.Len(t, errs, 1)
	require.ErrorIs(t, errs[0], dlerrors.UnsupportedTargetError{OS: runtime.GOOS, Arch: runtime.GOARCH})
}
