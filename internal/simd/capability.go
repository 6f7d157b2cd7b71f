package simd

import (
	"os"
	"runtime"
	"strings"

	"golang.org/x/sys/cpu"
)

// ISA identifies a SIMD instruction set. Every ISA other than Generic selects
// the unrolled kernels.
type ISA uint8

const (
	// Generic is the scalar reference implementation.
	Generic ISA = iota
	// NEON is ARM64 Advanced SIMD.
	NEON
	// SVE2 is the ARM64 Scalable Vector Extension 2.
	SVE2
	// AVX2 is x86-64 AVX2 with FMA.
	AVX2
	// AVX512 is x86-64 AVX-512 F and BW.
	AVX512
)

// OverrideEnv names the environment variable that forces an ISA.
const OverrideEnv = "KNNSPACE_SIMD"

type isaInfo struct {
	name      string
	arch      string
	available bool
}

// isas is ordered from least to most preferred within each architecture.
var isas = [...]isaInfo{
	Generic: {name: "generic", available: true},
	NEON:    {name: "neon", arch: "arm64", available: cpu.ARM64.HasASIMD},
	// SVE2 on darwin is emulated and slower than NEON.
	SVE2:   {name: "sve2", arch: "arm64", available: cpu.ARM64.HasSVE2 && runtime.GOOS != "darwin"},
	AVX2:   {name: "avx2", arch: "amd64", available: cpu.X86.HasAVX2 && cpu.X86.HasFMA},
	AVX512: {name: "avx512", arch: "amd64", available: cpu.X86.HasAVX512F && cpu.X86.HasAVX512BW},
}

func (i ISA) String() string {
	if int(i) < len(isas) {
		return isas[i].name
	}
	return "unknown"
}

// Available reports whether the CPU running the process supports i.
func (i ISA) Available() bool {
	if int(i) >= len(isas) {
		return false
	}
	info := isas[i]
	return info.available && (info.arch == "" || info.arch == runtime.GOARCH)
}

// ParseISA parses an ISA name, ignoring case.
func ParseISA(s string) (ISA, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, info := range isas {
		if info.name == s {
			return ISA(i), true
		}
	}
	return Generic, false
}

var (
	activeISA   ISA
	hasOverride bool
)

func init() {
	activeISA, hasOverride = chooseISA(os.Getenv(OverrideEnv))
	selectKernels(activeISA)
}

// chooseISA honours an available override, else picks the best available ISA.
func chooseISA(override string) (ISA, bool) {
	if override != "" {
		if isa, ok := ParseISA(override); ok && isa.Available() {
			return isa, true
		}
	}
	best := Generic
	for i := range isas {
		if ISA(i).Available() {
			best = ISA(i)
		}
	}
	return best, false
}

// ActiveISA returns the ISA selected at startup.
func ActiveISA() ISA {
	return activeISA
}

// IsOverridden reports whether KNNSPACE_SIMD selected the ISA.
func IsOverridden() bool {
	return hasOverride
}

// Capabilities returns, for every non-generic ISA, whether the CPU supports it.
func Capabilities() map[string]bool {
	out := make(map[string]bool, len(isas)-1)
	for i := range isas[1:] {
		isa := ISA(i + 1)
		out[isa.String()] = isa.Available()
	}
	return out
}
