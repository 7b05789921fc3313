// Package sysinfo reads point-in-time host health metrics: CPU, RAM,
// per-drive free space, and the heaviest processes by memory.
//
// Snapshots are always recomputed from the live OS — values must
// reflect "now", so nothing here is cached across calls.
package sysinfo

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// TopProcessCount is how many processes a snapshot carries.
const TopProcessCount = 10

// cpuSampleInterval is the window used to measure CPU utilization.
// Short enough to keep a turn snappy, long enough for a stable reading.
const cpuSampleInterval = 500 * time.Millisecond

// Drive describes one mounted filesystem.
type Drive struct {
	Mount       string
	TotalBytes  uint64
	FreeBytes   uint64
	UsedPercent float64
}

// Process describes one running process.
type Process struct {
	PID      int32
	Name     string
	MemBytes uint64
}

// Snapshot is a fresh read of host state.
type Snapshot struct {
	TakenAt      time.Time
	CPUPercent   float64
	RAMUsed      uint64
	RAMTotal     uint64
	RAMPercent   float64
	Drives       []Drive
	TopProcesses []Process // descending by MemBytes
}

// Collector reads snapshots on demand.
type Collector struct {
	// listProcs is the process-table reader; a seam so tests can
	// exercise total-failure handling without a broken /proc.
	listProcs func(ctx context.Context) ([]Process, error)
}

// NewCollector creates a Collector.
func NewCollector() *Collector {
	c := &Collector{}
	c.listProcs = c.collectProcesses
	return c
}

// Collect reads a full snapshot. Partial sensor failures (a drive that
// refuses Usage, a process that exits mid-read) are skipped, not fatal;
// a total CPU, memory, or process-table read failure errors out.
func (c *Collector) Collect(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{TakenAt: time.Now()}

	pct, err := cpu.PercentWithContext(ctx, cpuSampleInterval, false)
	if err != nil {
		return nil, fmt.Errorf("read cpu: %w", err)
	}
	if len(pct) > 0 {
		snap.CPUPercent = pct[0]
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("read memory: %w", err)
	}
	snap.RAMUsed = vm.Used
	snap.RAMTotal = vm.Total
	snap.RAMPercent = vm.UsedPercent

	snap.Drives = c.collectDrives(ctx)

	procs, err := c.listProcs(ctx)
	if err != nil {
		return nil, err
	}
	snap.TopProcesses = procs

	return snap, nil
}

// collectDrives reads usage for each physical partition. Virtual and
// unreadable mounts are skipped.
func (c *Collector) collectDrives(ctx context.Context) []Drive {
	parts, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return nil
	}

	var drives []Drive
	for _, p := range parts {
		if p.Fstype == "" || hasOpt(p.Opts, "cdrom") {
			continue
		}
		usage, err := disk.UsageWithContext(ctx, p.Mountpoint)
		if err != nil || usage.Total == 0 {
			continue
		}
		drives = append(drives, Drive{
			Mount:       p.Mountpoint,
			TotalBytes:  usage.Total,
			FreeBytes:   usage.Free,
			UsedPercent: usage.UsedPercent,
		})
	}

	sort.Slice(drives, func(i, j int) bool { return drives[i].Mount < drives[j].Mount })
	return drives
}

// hasOpt reports whether a mount option is present.
func hasOpt(opts []string, want string) bool {
	for _, o := range opts {
		if o == want {
			return true
		}
	}
	return false
}

// collectProcesses returns the heaviest processes by resident memory,
// descending, ties broken by PID for determinism.
func (c *Collector) collectProcesses(ctx context.Context) ([]Process, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}

	var out []Process
	for _, p := range procs {
		memInfo, err := p.MemoryInfoWithContext(ctx)
		if err != nil || memInfo == nil {
			continue // process exited mid-read
		}
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		out = append(out, Process{PID: p.Pid, Name: name, MemBytes: memInfo.RSS})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].MemBytes != out[j].MemBytes {
			return out[i].MemBytes > out[j].MemBytes
		}
		return out[i].PID < out[j].PID
	})

	if len(out) > TopProcessCount {
		out = out[:TopProcessCount]
	}
	return out, nil
}

// Summary renders the snapshot as compact text for the reasoning
// service payload and for direct display.
func (s *Snapshot) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "CPU: %.1f%%\n", s.CPUPercent)
	fmt.Fprintf(&b, "RAM: %.1f%% (%s of %s)\n", s.RAMPercent, humanBytes(s.RAMUsed), humanBytes(s.RAMTotal))
	for _, d := range s.Drives {
		fmt.Fprintf(&b, "%s: %s free (%.0f%% full)\n", d.Mount, humanBytes(d.FreeBytes), d.UsedPercent)
	}
	return strings.TrimRight(b.String(), "\n")
}

// ProcessReport renders the top processes as one line each.
func (s *Snapshot) ProcessReport() string {
	if len(s.TopProcesses) == 0 {
		return "No process information available."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Top %d processes by memory:\n", len(s.TopProcesses))
	for _, p := range s.TopProcesses {
		fmt.Fprintf(&b, "  %-8d %-30s %s\n", p.PID, p.Name, humanBytes(p.MemBytes))
	}
	return strings.TrimRight(b.String(), "\n")
}

// DriveReport renders per-drive free space.
func (s *Snapshot) DriveReport() string {
	if len(s.Drives) == 0 {
		return "No drive information available."
	}
	var b strings.Builder
	for _, d := range s.Drives {
		fmt.Fprintf(&b, "%s - Free: %s of %s (%.0f%% full)\n", d.Mount, humanBytes(d.FreeBytes), humanBytes(d.TotalBytes), d.UsedPercent)
	}
	return strings.TrimRight(b.String(), "\n")
}

// humanBytes formats a byte count with binary units.
func humanBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
