package stream

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	syscpu "golang.org/x/sys/cpu"
)

// HostInfo describes the machine the benchmark runs on.
type HostInfo struct {
	OS           string   `json:"os"`
	Arch         string   `json:"arch"`
	ModelName    string   `json:"model_name,omitempty"`
	PhysicalCPUs int      `json:"physical_cpus,omitempty"`
	LogicalCPUs  int      `json:"logical_cpus"`
	GOMAXPROCS   int      `json:"gomaxprocs"`
	CacheKiB     int      `json:"cache_kib,omitempty"` // as reported by the OS, usually the LLC
	MemTotal     uint64   `json:"mem_total"`
	MemAvailable uint64   `json:"mem_available"`
	Features     []string `json:"features"`
}

// CollectHostInfo gathers CPU, cache and memory details. Fields that cannot be
// read are left zero and the first failure is returned as an instrumentation
// error alongside the partial result.
func CollectHostInfo(ctx context.Context) (*HostInfo, error) {
	info := &HostInfo{
		OS:          runtime.GOOS,
		Arch:        runtime.GOARCH,
		LogicalCPUs: runtime.NumCPU(),
		GOMAXPROCS:  runtime.GOMAXPROCS(0),
		Features:    CPUFeatures(),
	}

	var firstErr error
	note := func(op string, err error) {
		if err != nil && firstErr == nil {
			firstErr = NewInstrumentationError("CollectHostInfo", op, err)
		}
	}

	stats, err := cpu.InfoWithContext(ctx)
	note("cpu info", err)
	if len(stats) > 0 {
		info.ModelName = strings.TrimSpace(stats[0].ModelName)
		info.CacheKiB = int(stats[0].CacheSize)
	}

	physical, err := cpu.CountsWithContext(ctx, false)
	note("physical core count", err)
	info.PhysicalCPUs = physical

	if logical, err := cpu.CountsWithContext(ctx, true); err == nil && logical > 0 {
		info.LogicalCPUs = logical
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	note("virtual memory", err)
	if vm != nil {
		info.MemTotal = vm.Total
		info.MemAvailable = vm.Available
	}

	return info, firstErr
}

// CPUFeatures lists the SIMD extensions relevant to streaming loads and stores.
func CPUFeatures() []string {
	var features []string
	add := func(ok bool, name string) {
		if ok {
			features = append(features, name)
		}
	}

	switch runtime.GOARCH {
	case "amd64", "386":
		add(syscpu.X86.HasSSE41 || syscpu.X86.HasSSE42, "SSE4")
		add(syscpu.X86.HasAVX, "AVX")
		add(syscpu.X86.HasAVX2, "AVX2")
		add(syscpu.X86.HasFMA, "FMA")
		add(syscpu.X86.HasAVX512F, "AVX512F")
		add(syscpu.X86.HasAVX512DQ, "AVX512DQ")
		add(syscpu.X86.HasAVX512BW, "AVX512BW")
		add(syscpu.X86.HasAVX512VL, "AVX512VL")
	case "arm64":
		add(syscpu.ARM64.HasASIMD, "NEON")
		add(syscpu.ARM64.HasFPHP, "FP16")
		add(syscpu.ARM64.HasASIMDHP, "ASIMDHP")
		add(syscpu.ARM64.HasSVE, "SVE")
	}
	return features
}

// SizingAdvice returns a warning when a working array is smaller than
// CacheSizeMultiple times the reported cache, or "" if the size is adequate or
// the cache size is unknown.
func (h *HostInfo) SizingAdvice(cfg Config) string {
	if h == nil || h.CacheKiB <= 0 {
		return ""
	}
	arrayBytes := int64(cfg.ArrayLength) * int64(cfg.Precision.Size())
	cacheBytes := int64(h.CacheKiB) * 1024
	if arrayBytes >= CacheSizeMultiple*cacheBytes {
		return ""
	}
	minLength := CacheSizeMultiple * cacheBytes / int64(cfg.Precision.Size())
	return fmt.Sprintf("each array is %d bytes, less than %d times the %d KiB cache; "+
		"results may reflect cache rather than memory bandwidth (use at least %d elements)",
		arrayBytes, CacheSizeMultiple, h.CacheKiB, minLength)
}

// CheckMemory rejects a configuration whose arena would exceed available
// memory. Unknown availability is not an error.
func (h *HostInfo) CheckMemory(cfg Config) error {
	if h == nil || h.MemAvailable == 0 {
		return nil
	}
	size, err := ArenaBytes(cfg.ArrayLength, cfg.Offset, cfg.Precision.Size())
	if err != nil {
		return err
	}
	if uint64(size) > h.MemAvailable {
		return NewAllocationError("CheckMemory",
			fmt.Sprintf("arena needs %d bytes but only %d are available", size, h.MemAvailable), nil)
	}
	return nil
}
