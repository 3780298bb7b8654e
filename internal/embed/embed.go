// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package embed materializes shared objects held in memory into files the
// platform loader can open.
package embed

import (
	"bytes"
	"compress/gzip"
	"io"

	"github.com/pkg/errors"
)

var gzipMagic = []byte{0x1f, 0x8b}

// ErrEmpty is returned when asked to dump an empty shared object.
var ErrEmpty = errors.New("empty shared object")

// copyContent writes the shared object to w, inflating it first when it is
// gzip-compressed.
func copyContent(w io.Writer, data []byte) error {
	if len(data) == 0 {
		return ErrEmpty
	}

	if !bytes.HasPrefix(data, gzipMagic) {
		_, err := w.Write(data)
		return errors.Wrap(err, "error writing content")
	}

	gr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return errors.Wrap(err, "error creating gzip reader")
	}

	if _, err := io.Copy(w, gr); err != nil {
		return errors.Wrap(err, "error copying gzip content")
	}

	return errors.Wrap(gr.Close(), "error closing gzip reader")
}
