package sysinfo

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func sampleSnapshot() *Snapshot {
	return &Snapshot{
		TakenAt:    time.Now(),
		CPUPercent: 42.5,
		RAMUsed:    4 << 30,
		RAMTotal:   16 << 30,
		RAMPercent: 25.0,
		Drives: []Drive{
			{Mount: "/", TotalBytes: 500 << 30, FreeBytes: 200 << 30, UsedPercent: 60},
			{Mount: "/data", TotalBytes: 1 << 40, FreeBytes: 512 << 30, UsedPercent: 50},
		},
		TopProcesses: []Process{
			{PID: 1234, Name: "browser", MemBytes: 2 << 30},
			{PID: 99, Name: "editor", MemBytes: 512 << 20},
		},
	}
}

func TestSummary(t *testing.T) {
	got := sampleSnapshot().Summary()

	for _, want := range []string{
		"CPU: 42.5%",
		"RAM: 25.0% (4.0 GB of 16.0 GB)",
		"/: 200.0 GB free (60% full)",
		"/data: 512.0 GB free (50% full)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Summary missing %q:\n%s", want, got)
		}
	}
}

func TestProcessReport(t *testing.T) {
	got := sampleSnapshot().ProcessReport()

	if !strings.Contains(got, "browser") || !strings.Contains(got, "2.0 GB") {
		t.Errorf("heaviest process missing:\n%s", got)
	}
	if !strings.Contains(got, "editor") || !strings.Contains(got, "512.0 MB") {
		t.Errorf("second process missing:\n%s", got)
	}

	empty := &Snapshot{}
	if !strings.Contains(empty.ProcessReport(), "No process information") {
		t.Errorf("empty report = %q", empty.ProcessReport())
	}
}

func TestDriveReport(t *testing.T) {
	got := sampleSnapshot().DriveReport()
	if !strings.Contains(got, "/data - Free: 512.0 GB of 1.0 TB (50% full)") {
		t.Errorf("DriveReport = %q", got)
	}
}

// A process table that cannot be read at all must fail the snapshot,
// not quietly produce one with an empty process list.
func TestCollectFailsWhenProcessTableUnreadable(t *testing.T) {
	c := NewCollector()
	c.listProcs = func(context.Context) ([]Process, error) {
		return nil, errors.New("proc table unreadable")
	}

	if _, err := c.Collect(context.Background()); err == nil {
		t.Error("Collect succeeded despite total process-list failure")
	}
}

func TestHumanBytes(t *testing.T) {
	tests := []struct {
		n    uint64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1 << 20, "1.0 MB"},
		{1 << 30, "1.0 GB"},
		{1 << 40, "1.0 TB"},
	}
	for _, tt := range tests {
		if got := humanBytes(tt.n); got != tt.want {
			t.Errorf("humanBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestHasOpt(t *testing.T) {
	if !hasOpt([]string{"rw", "cdrom"}, "cdrom") {
		t.Error("hasOpt missed present option")
	}
	if hasOpt([]string{"rw"}, "cdrom") {
		t.Error("hasOpt matched absent option")
	}
}
