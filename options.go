// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package dylib

import "errors"

// Option configures how a [Library] is opened.
type Option func(*config) error

type config struct {
	noCache  bool
	onUnload func(path string)
	release  func() error
}

func newConfig(opts ...Option) (config, error) {
	var cfg config
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return config{}, err
		}
	}
	return cfg, nil
}

// WithoutSymbolCache makes every lookup go through the platform loader instead
// of reusing the addresses of symbols already resolved.
func WithoutSymbolCache() Option {
	return func(cfg *config) error {
		cfg.noCache = true
		return nil
	}
}

// WithUnloadHook registers fn to be called with the library path once the
// native library has been released, either by [Library.Unload] or by the
// [UnloadOnDestruct] cleanup. The hook runs on the goroutine releasing the
// library and must not reference the [Library] itself, which would prevent it
// from ever being collected.
func WithUnloadHook(fn func(path string)) Option {
	return func(cfg *config) error {
		if fn == nil {
			return errors.New("unload hook cannot be nil")
		}
		cfg.onUnload = fn
		return nil
	}
}
