package stream

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectHostInfo(t *testing.T) {
	info, err := CollectHostInfo(context.Background())
	if err != nil {
		// Partial information is still returned.
		assert.True(t, IsInstrumentationError(err))
	}
	require.NotNil(t, info)
	assert.Equal(t, runtime.GOOS, info.OS)
	assert.Equal(t, runtime.GOARCH, info.Arch)
	assert.Positive(t, info.LogicalCPUs)
	assert.Positive(t, info.GOMAXPROCS)
}

func TestSizingAdvice(t *testing.T) {
	host := &HostInfo{CacheKiB: 1024}
	cfg := DefaultConfig()

	cfg.ArrayLength = 1000
	assert.Contains(t, host.SizingAdvice(cfg), "524288 elements")

	cfg.ArrayLength = 4 * 1024 * 1024 / 8
	assert.Empty(t, host.SizingAdvice(cfg))

	assert.Empty(t, (&HostInfo{}).SizingAdvice(cfg))
	var nilHost *HostInfo
	assert.Empty(t, nilHost.SizingAdvice(cfg))
}

func TestCheckMemory(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ArrayLength = 1000

	assert.NoError(t, (&HostInfo{MemAvailable: 1 << 30}).CheckMemory(cfg))
	assert.NoError(t, (&HostInfo{}).CheckMemory(cfg))

	err := (&HostInfo{MemAvailable: 1000}).CheckMemory(cfg)
	assert.True(t, IsAllocationError(err))
}

func TestCPUFeaturesAreKnownNames(t *testing.T) {
	known := map[string]bool{
		"SSE4": true, "AVX": true, "AVX2": true, "FMA": true,
		"AVX512F": true, "AVX512DQ": true, "AVX512BW": true, "AVX512VL": true,
		"NEON": true, "FP16": true, "ASIMDHP": true, "SVE": true,
	}
	for _, f := range CPUFeatures() {
		assert.True(t, known[f], f)
	}
}
