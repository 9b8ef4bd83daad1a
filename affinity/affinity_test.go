// File: affinity/affinity_test.go
// Author: momentics <momentics@gmail.com>

package affinity

import (
	"errors"
	"runtime"
	"testing"

	"github.com/momentics/hioload-rt/api"
)

func TestAffinity_PinAndClear(t *testing.T) {
	cpus, err := AllowedCPUs()
	if errors.Is(err, api.ErrNotSupported) {
		t.Skip("affinity not supported on this platform")
	}
	if err != nil {
		t.Fatalf("AllowedCPUs failed: %v", err)
	}
	if len(cpus) == 0 {
		t.Fatalf("Expected at least one allowed CPU")
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := SetAffinity(cpus[0]); err != nil {
		t.Fatalf("SetAffinity(%d) failed: %v", cpus[0], err)
	}
	if err := ClearAffinity(); err != nil {
		t.Fatalf("ClearAffinity failed: %v", err)
	}
}

func TestAffinity_RejectsForeignCPU(t *testing.T) {
	if _, err := AllowedCPUs(); err != nil {
		t.Skip("affinity not supported on this platform")
	}
	err := SetAffinity(-1)
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.Code != api.ErrCodeInvalidArgument {
		t.Fatalf("Expected invalid argument error, got %v", err)
	}
}
