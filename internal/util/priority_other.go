//go:build !unix

package util

// LowerPriority is a no-op where process priorities are not supported.
func LowerPriority() error {
	return nil
}
