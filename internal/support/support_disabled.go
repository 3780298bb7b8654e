// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Manually set dylib.no_dl build tag
//go:build dylib.no_dl

package support

import "github.com/DataDog/go-dylib/dlerrors"

func init() {
	manuallyDisabledErr = dlerrors.ManuallyDisabledError{}
}
