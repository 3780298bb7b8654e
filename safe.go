// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package dylib

import (
	"github.com/DataDog/go-dylib/dlerrors"
	"github.com/pkg/errors"
)

// tryCall calls function `f` and recovers from any panic occurring while it
// executes, returning it in a `dlerrors.PanicError` object type.
func tryCall(f func() error) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			// Note that panic(nil) matches this case and cannot be really tested for.
			return
		}

		switch actual := r.(type) {
		case error:
			err = errors.WithStack(actual)
		case string:
			err = errors.New(actual)
		default:
			err = errors.Errorf("%v", r)
		}

		err = dlerrors.NewPanicError(f, err)
	}()
	return f()
}
