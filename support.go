// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package dylib

import (
	"errors"

	"github.com/DataDog/go-dylib/internal/support"
)

// Usable returns true if native libraries can be loaded by this build, false
// and an error otherwise.
//
// The following conditions are checked:
//   - Dynamic loading has not been manually disabled with the `dylib.no_dl` go build tag
//   - The current OS/Arch has a platform loader
func Usable() (bool, error) {
	err := errors.Join(append([]error{support.ManuallyDisabledError()}, support.Errors()...)...)
	return err == nil, err
}
