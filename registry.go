// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package dylib

import (
	"slices"
	"sync"
)

// registry tracks the native handles currently held by this package, including
// the ones leaked by dropped ManualUnload libraries.
var registry = &liveRegistry{live: make(map[*libState]struct{})}

type liveRegistry struct {
	mu   sync.Mutex
	live map[*libState]struct{}
}

func (r *liveRegistry) add(s *libState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.live[s] = struct{}{}
}

func (r *liveRegistry) remove(s *libState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.live, s)
}

func (r *liveRegistry) paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	paths := make([]string, 0, len(r.live))
	for s := range r.live {
		paths = append(paths, s.path)
	}
	slices.Sort(paths)
	return paths
}

// Loaded returns the sorted paths of the native libraries this package keeps
// loaded, one entry per handle. Handles of unreachable [ManualUnload]
// libraries are still reported, since they were never released.
func Loaded() []string {
	return registry.paths()
}
