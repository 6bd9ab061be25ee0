package util

import (
	"bufio"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// meminfoPath and cpuinfoPath are variables so tests can point them at fixtures.
var (
	meminfoPath = "/proc/meminfo"
	cpuinfoPath = "/proc/cpuinfo"
)

// SystemInfo describes the resources available to the analysis workers.
type SystemInfo struct {
	Hostname        string
	LogicalCores    int
	PhysicalCores   int
	AvailableMemory uint64 // bytes, 0 when unknown
}

// GetSystemInfo collects host information for the run header.
func GetSystemInfo() SystemInfo {
	hostname, _ := os.Hostname()
	return SystemInfo{
		Hostname:        hostname,
		LogicalCores:    runtime.NumCPU(),
		PhysicalCores:   PhysicalCores(),
		AvailableMemory: AvailableMemoryBytes(),
	}
}

// AvailableMemoryBytes returns MemAvailable from /proc/meminfo, or 0 when
// it cannot be read.
func AvailableMemoryBytes() uint64 {
	f, err := os.Open(meminfoPath)
	if err != nil {
		return 0
	}
	defer func() { _ = f.Close() }()
	return parseMemAvailable(f)
}

func parseMemAvailable(r io.Reader) uint64 {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		key, rest, ok := strings.Cut(sc.Text(), ":")
		if !ok || key != "MemAvailable" {
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			return 0
		}
		kb, err := strconv.ParseUint(fields[0], 10, 64)
		if err != nil {
			return 0
		}
		return kb * 1024
	}
	return 0
}

// FitsInMemory reports whether needBytes stays within memFraction of the
// available memory. It returns true when memory cannot be determined.
func FitsInMemory(needBytes uint64, memFraction float64) bool {
	available := AvailableMemoryBytes()
	if available == 0 {
		return true
	}
	return needBytes <= uint64(float64(available)*memFraction)
}

// PhysicalCores counts distinct (physical id, core id) pairs in
// /proc/cpuinfo. Without that file it assumes two threads per core.
func PhysicalCores() int {
	if f, err := os.Open(cpuinfoPath); err == nil {
		cores := parsePhysicalCores(f)
		_ = f.Close()
		if cores > 0 {
			return cores
		}
	}
	return max(runtime.NumCPU()/2, 1)
}

func parsePhysicalCores(r io.Reader) int {
	seen := make(map[string]struct{})
	var pkg, core string
	flush := func() {
		if core != "" {
			seen[pkg+":"+core] = struct{}{}
		}
		pkg, core = "", ""
	}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		key, val, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case "physical id":
			pkg = strings.TrimSpace(val)
		case "core id":
			core = strings.TrimSpace(val)
		}
	}
	flush()
	return len(seen)
}
