// Package api
// Author: momentics <momentics@gmail.com>
//
// Runtime introspection for pools, containers and the platform.

package api

// Debug is a registry of named probes. The facade registers probes for
// the platform CPU set, live worker threads and the latest pool and
// container statistics.
type Debug interface {
	// DumpState evaluates every probe and returns the results by name.
	DumpState() map[string]any

	// RegisterProbe adds or replaces the probe called name.
	RegisterProbe(name string, fn func() any)
}
