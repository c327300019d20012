package system

import (
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

type Stats struct {
	ProcessRSS   uint64
	HeapAlloc    uint64
	SystemUsed   float64 // percent
	SystemTotal  uint64
	NumGoroutine int
}

// ReadStats samples process and host memory.
func ReadStats() (Stats, error) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	s := Stats{HeapAlloc: ms.HeapAlloc, NumGoroutine: runtime.NumGoroutine()}

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return s, fmt.Errorf("process handle: %w", err)
	}
	info, err := proc.MemoryInfo()
	if err != nil {
		return s, fmt.Errorf("process memory: %w", err)
	}
	s.ProcessRSS = info.RSS

	vm, err := mem.VirtualMemory()
	if err != nil {
		return s, fmt.Errorf("system memory: %w", err)
	}
	s.SystemUsed = vm.UsedPercent
	s.SystemTotal = vm.Total
	return s, nil
}

func (s Stats) String() string {
	return fmt.Sprintf("rss=%s heap=%s system=%.1f%% of %s goroutines=%d",
		formatBytes(s.ProcessRSS), formatBytes(s.HeapAlloc), s.SystemUsed, formatBytes(s.SystemTotal), s.NumGoroutine)
}

// LogStats prints a one-line memory report.
func LogStats(logger *log.Logger, label string) {
	if logger == nil {
		logger = log.Default()
	}
	s, err := ReadStats()
	if err != nil {
		logger.Printf("[!] %s: stats unavailable: %v", label, err)
		return
	}
	logger.Printf("[*] %s: %s", label, s)
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
