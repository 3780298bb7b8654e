// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

//go:build !linux

package embed

import (
	stderrors "errors"
	"os"
	"runtime"

	"github.com/pkg/errors"
)

// Dump writes data into a temporary file and returns its path. The file is
// removed by closer, which must only be called once the library loaded from it
// has been closed (windows refuses to remove a loaded DLL).
func Dump(name string, data []byte) (path string, closer func() error, err error) {
	file, err := os.CreateTemp("", name+"-*"+extension())
	if err != nil {
		return "", nil, errors.Wrap(err, "error creating temp file")
	}
	tmpPath := file.Name()

	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			err = stderrors.Join(err, errors.Wrap(closeErr, "error closing file"))
		}
		if err != nil {
			if rmErr := os.Remove(tmpPath); rmErr != nil {
				err = stderrors.Join(err, errors.Wrap(rmErr, "error removing file"))
			}
			path, closer = "", nil
		}
	}()

	if err := copyContent(file, data); err != nil {
		return "", nil, errors.Wrapf(err, "error dumping %s to %s", name, tmpPath)
	}

	return tmpPath, func() error { return os.Remove(tmpPath) }, nil
}

func extension() string {
	switch runtime.GOOS {
	case "darwin":
		return ".dylib"
	case "windows":
		return ".dll"
	default:
		return ".so"
	}
}
