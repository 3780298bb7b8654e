// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package support reports why dynamic loading is unavailable for the current
// build target.
package support

// Store all the errors related to why dynamic loading is unavailable for the
// current target at runtime.
var supportErrors []error

// Not nil if the build tag `dylib.no_dl` is set
var manuallyDisabledErr error

// Errors returns all the errors related to why dynamic loading is unavailable
// for the current target at runtime.
func Errors() []error {
	return supportErrors
}

// ManuallyDisabledError returns an error if the build tag `dylib.no_dl` is set
func ManuallyDisabledError() error {
	return manuallyDisabledErr
}
