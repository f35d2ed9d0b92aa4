package game

import (
	"fmt"
	"os"
	"regexp"
	"runtime"
	"strings"

	"github.com/klauspost/cpuid/v2"
)

// Tier is the rendering and simulation fidelity chosen once at startup.
type Tier uint8

const (
	TierLow Tier = iota
	TierHigh
)

func (t Tier) String() string {
	if t == TierHigh {
		return "high"
	}
	return "low"
}

// Thresholds at or below which a device is treated as low-end.
const (
	lowEndCores  = 4
	lowEndMemory = 4 << 30
)

var mobileUA = regexp.MustCompile(`(?i)Android|webOS|iPhone|iPad|iPod|BlackBerry|IEMobile|Opera Mini`)

// Signals are the raw device facts the tier decision is made from. Zero
// values mean the signal was unavailable.
type Signals struct {
	GOOS         string
	UserAgent    string
	LogicalCores int
	MemoryBytes  uint64
}

// Mobile reports whether the host looks like a phone or tablet.
func (s Signals) Mobile() bool {
	switch s.GOOS {
	case "android", "ios":
		return true
	}
	return s.UserAgent != "" && mobileUA.MatchString(s.UserAgent)
}

// Probe gathers Signals from the running process. userAgent is an optional
// hint supplied by the host (for example when embedded in a browser shell).
func Probe(userAgent string) Signals {
	cores := cpuid.CPU.LogicalCores
	if cores <= 0 {
		cores = runtime.NumCPU()
	}
	if userAgent == "" {
		userAgent = os.Getenv("ORBITSCENE_USER_AGENT")
	}
	return Signals{
		GOOS:         runtime.GOOS,
		UserAgent:    userAgent,
		LogicalCores: cores,
		MemoryBytes:  systemMemory(),
	}
}

// Classify decides the tier. Mobile devices, few cores or little memory all
// select Low, as does any missing signal.
func Classify(s Signals) Tier {
	if s.Mobile() {
		return TierLow
	}
	if s.LogicalCores <= lowEndCores || s.MemoryBytes <= lowEndMemory {
		return TierLow
	}
	return TierHigh
}

// ResolveTier applies a configured override ("low", "high") or classifies
// the given signals for "auto".
func ResolveTier(setting string, s Signals) (Tier, error) {
	switch strings.ToLower(setting) {
	case "", "auto":
		return Classify(s), nil
	case "low":
		return TierLow, nil
	case "high":
		return TierHigh, nil
	default:
		return TierLow, fmt.Errorf("unknown tier %q", setting)
	}
}
