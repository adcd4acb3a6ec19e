// Package sysinfo captures a snapshot of the host a trace batch ran on.
// Trace timings are only comparable when the collection environment is
// known, so each batch manifest embeds one of these snapshots.
package sysinfo

import (
	"context"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/tracefetch/tracefetch/pkg/logtrace"
)

// Snapshot describes the collection host. Fields are best effort; a
// probe failure leaves its field zero rather than failing the batch.
type Snapshot struct {
	Hostname    string `yaml:"hostname"`
	OS          string `yaml:"os"`
	Arch        string `yaml:"arch"`
	CPUCores    int    `yaml:"cpu_cores"`
	MemoryTotal uint64 `yaml:"memory_total_bytes"`
	DiskFree    uint64 `yaml:"disk_free_bytes"`
}

// Collector handles environment snapshot probing
type Collector struct{}

// NewCollector creates a new snapshot collector instance
func NewCollector() *Collector { return &Collector{} }

// Collect probes the host. diskPath names the volume the trace logs are
// written to; its free space ends up in the snapshot.
func (c *Collector) Collect(ctx context.Context, diskPath string) Snapshot {
	snap := Snapshot{
		OS:   runtime.GOOS,
		Arch: runtime.GOARCH,
	}

	if hostname, err := os.Hostname(); err == nil {
		snap.Hostname = hostname
	} else {
		logtrace.Error(ctx, "failed to get hostname", logtrace.Fields{logtrace.FieldError: err.Error()})
	}

	if cores, err := cpu.Counts(true); err == nil {
		snap.CPUCores = cores
	} else {
		logtrace.Error(ctx, "failed to get cpu core count", logtrace.Fields{logtrace.FieldError: err.Error()})
	}

	if vmem, err := mem.VirtualMemory(); err == nil {
		snap.MemoryTotal = vmem.Total
	} else {
		logtrace.Error(ctx, "failed to get memory info", logtrace.Fields{logtrace.FieldError: err.Error()})
	}

	if diskPath == "" {
		diskPath = "."
	}
	if usage, err := disk.Usage(diskPath); err == nil {
		snap.DiskFree = usage.Free
	} else {
		logtrace.Error(ctx, "failed to get storage info", logtrace.Fields{logtrace.FieldError: err.Error(), logtrace.FieldPath: diskPath})
	}

	return snap
}
