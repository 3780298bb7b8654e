// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

//go:build dylib.debug

package loader

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/DataDog/go-dylib/internal/log"
)

// EnvTraceFile is the environment variable naming the file loader calls are
// traced to. It defaults to go-dylib-loader.<pid>.log in the temporary
// directory.
const EnvTraceFile = "DYLIB_TRACE_FILE"

type tracer struct {
	mu    sync.Mutex
	out   io.Writer
	sync  func() error
	start time.Time
}

var (
	traceOnce sync.Once
	trace     *tracer
)

func openTracer() *tracer {
	path := os.Getenv(EnvTraceFile)
	if path == "" {
		path = filepath.Join(os.TempDir(), fmt.Sprintf("go-dylib-loader.%d.log", os.Getpid()))
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Warnf("cannot open loader trace file '%s', tracing to stderr: %v", path, err)
		return &tracer{out: os.Stderr, start: time.Now()}
	}
	return &tracer{out: file, sync: file.Sync, start: time.Now()}
}

// printf writes one line stamped with the time elapsed since the tracer was
// opened. The line reaches the disk before printf returns, so it survives a
// crash in the native call that follows.
func (t *tracer) printf(format string, args ...any) {
	line := strings.TrimSuffix(fmt.Sprintf(format, args...), "\n")

	t.mu.Lock()
	_, _ = fmt.Fprintf(t.out, "%12s loader: %s\n", time.Since(t.start).Round(time.Microsecond), line)
	if t.sync != nil {
		_ = t.sync()
	}
	t.mu.Unlock()

	log.Tracef("loader: %s", line)
}

func tracef(format string, args ...any) {
	traceOnce.Do(func() { trace = openTracer() })
	trace.printf(format, args...)
}
