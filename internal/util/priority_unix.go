//go:build unix

package util

import "golang.org/x/sys/unix"

// responsiveNice is the niceness applied by LowerPriority.
const responsiveNice = 10

// LowerPriority raises the niceness of the current process so analysis
// yields the CPU to interactive work. Child ffmpeg processes inherit it.
func LowerPriority() error {
	return unix.Setpriority(unix.PRIO_PROCESS, 0, responsiveNice)
}
