// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

//go:build linux

package embed

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Dump writes data into an anonymous memory file and returns a path to it that
// dlopen accepts. The file lives until closer is called; closing it does not
// affect a library already loaded from it.
func Dump(name string, data []byte) (path string, closer func() error, err error) {
	fd, err := unix.MemfdCreate(name, unix.MFD_CLOEXEC)
	if err != nil {
		return "", nil, errors.Wrap(err, "error creating memfd")
	}

	file := os.NewFile(uintptr(fd), fmt.Sprintf("/proc/self/fd/%d", fd))
	if file == nil {
		return "", nil, errors.New("error creating file from fd")
	}

	defer func() {
		if err != nil {
			if closeErr := file.Close(); closeErr != nil {
				err = stderrors.Join(err, errors.Wrap(closeErr, "error closing file"))
			}
		}
	}()

	if err := copyContent(file, data); err != nil {
		return "", nil, errors.Wrapf(err, "error dumping %s to memfd", name)
	}

	return file.Name(), file.Close, nil
}
