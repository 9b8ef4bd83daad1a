// Package control
// Author: momentics <momentics@gmail.com>
//
// Configuration, runtime metrics and debug introspection layer for hioload-rt.
//
// Provides concurrent-safe state handling primitives including:
//   - YAML configuration with defaults and validation
//   - Config snapshots with reload listeners
//   - Prometheus metrics for worker pools and sequence containers
//   - Debug probe registration and state export
package control
