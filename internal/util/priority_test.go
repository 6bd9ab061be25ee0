//go:build unix

package util

import "testing"

func TestLowerPriority(t *testing.T) {
	if err := LowerPriority(); err != nil {
		// Raising niceness only fails when it is already above the target.
		t.Skipf("LowerPriority() error = %v", err)
	}
}
