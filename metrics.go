// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package dylib

import (
	"maps"
	"sync"
	"time"

	"go.uber.org/atomic"
)

// Stats stores the metrics collected on a [Library].
type Stats struct {
	// Timers returns a map of metrics and their cumulated durations.
	Timers map[string]time.Duration `json:"timers,omitempty"`

	// Lookups is the number of symbol lookups on a loaded library.
	Lookups uint64 `json:"lookups"`

	// CacheHits is the number of lookups served by the symbol cache.
	CacheHits uint64 `json:"cache_hits"`

	// Misses is the number of lookups of symbols the library does not export.
	Misses uint64 `json:"misses"`
}

const (
	loadTimer    = "load"
	resolveTimer = "resolve"
)

// Metrics transforms the stats into a flat map of key value metrics, timers
// being expressed in microseconds.
func (stats Stats) Metrics() map[string]any {
	tags := make(map[string]any, len(stats.Timers)+3)
	for k, v := range stats.Timers {
		tags["dylib."+k] = float64(v.Nanoseconds()) / float64(time.Microsecond)
	}
	tags["dylib.lookups"] = stats.Lookups
	tags["dylib.cache_hits"] = stats.CacheHits
	tags["dylib.misses"] = stats.Misses
	return tags
}

// Stats returns a snapshot of the metrics collected on the library. They stay
// available after the library is unloaded.
func (lib *Library) Stats() Stats {
	s := &lib.state.stats
	return Stats{
		Timers:    s.timers.copy(),
		Lookups:   s.lookups.Load(),
		CacheHits: s.cacheHits.Load(),
		Misses:    s.misses.Load(),
	}
}

type stats struct {
	timers    metricsStore
	lookups   atomic.Uint64
	cacheHits atomic.Uint64
	misses    atomic.Uint64
}

type metricsStore struct {
	data  map[string]time.Duration
	mutex sync.RWMutex
}

func (metrics *metricsStore) add(component string, duration time.Duration) {
	metrics.mutex.Lock()
	defer metrics.mutex.Unlock()
	if metrics.data == nil {
		metrics.data = make(map[string]time.Duration, 2)
	}

	metrics.data[component] += duration
}

func (metrics *metricsStore) copy() map[string]time.Duration {
	metrics.mutex.RLock()
	defer metrics.mutex.RUnlock()
	if metrics.data == nil {
		return nil
	}
	return maps.Clone(metrics.data)
}
