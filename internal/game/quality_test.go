package game

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	desktop := Signals{GOOS: "linux", LogicalCores: 16, MemoryBytes: 32 << 30}

	tests := []struct {
		name   string
		mutate func(*Signals)
		want   Tier
	}{
		{"desktop", func(*Signals) {}, TierHigh},
		{"android os", func(s *Signals) { s.GOOS = "android" }, TierLow},
		{"iphone agent", func(s *Signals) { s.UserAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0)" }, TierLow},
		{"desktop agent", func(s *Signals) { s.UserAgent = "Mozilla/5.0 (X11; Linux x86_64)" }, TierHigh},
		{"four cores", func(s *Signals) { s.LogicalCores = 4 }, TierLow},
		{"four gigabytes", func(s *Signals) { s.MemoryBytes = 4 << 30 }, TierLow},
		{"unknown cores", func(s *Signals) { s.LogicalCores = 0 }, TierLow},
		{"unknown memory", func(s *Signals) { s.MemoryBytes = 0 }, TierLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := desktop
			tt.mutate(&s)
			assert.Equal(t, tt.want, Classify(s))
		})
	}
}

func TestResolveTier(t *testing.T) {
	weak := Signals{LogicalCores: 2}

	tier, err := ResolveTier("auto", weak)
	require.NoError(t, err)
	assert.Equal(t, TierLow, tier)

	tier, err = ResolveTier("HIGH", weak)
	require.NoError(t, err)
	assert.Equal(t, TierHigh, tier)

	_, err = ResolveTier("ultra", weak)
	assert.Error(t, err)
}

func TestProbe(t *testing.T) {
	s := Probe("Opera Mini/9.80")
	assert.NotEmpty(t, s.GOOS)
	assert.Positive(t, s.LogicalCores)
	assert.True(t, s.Mobile())
	assert.Equal(t, "low", Classify(s).String())
}

func TestSystemMemory(t *testing.T) {
	switch runtime.GOOS {
	case "linux", "darwin", "windows":
		assert.Positive(t, systemMemory())
	default:
		assert.Zero(t, systemMemory())
	}
}
