// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package loader holds the per-platform primitives used to open, close and
// resolve symbols from native shared libraries. Exactly one implementation is
// compiled in, selected by build tags.
package loader

import "errors"

// Handle is the opaque native token for a loaded library.
type Handle uintptr

var errNullHandle = errors.New("the platform loader returned a NULL handle")
