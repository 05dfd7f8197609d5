package calibration

import (
	"runtime"
	"sort"

	"golang.org/x/sys/cpu"

	"github.com/agbru/strassen/internal/strassen"
)

// ─────────────────────────────────────────────────────────────────────────────
// Leaf Size Candidates
// ─────────────────────────────────────────────────────────────────────────────

// DefaultCalibrationSize is the matrix size timed when none is configured.
const DefaultCalibrationSize = 256

// LeafSizeCandidates are the leaf sizes tried by a full calibration.
var LeafSizeCandidates = []int{4, 8, 16, 32, 64, 128}

// GenerateLeafSizes returns the full candidate list.
func GenerateLeafSizes() []int {
	out := make([]int, len(LeafSizeCandidates))
	copy(out, LeafSizeCandidates)
	return out
}

// GenerateQuickLeafSizes returns a reduced candidate list for startup
// calibration. Wide vector units favour larger blocks, so the list is
// shifted up on such machines.
func GenerateQuickLeafSizes() []int {
	if hasWideVectors() {
		return []int{16, 32, 64}
	}
	return []int{8, 16, 32}
}

// FilterLeafSizes keeps the candidates that a matrix of the given size can
// be halved down to, in ascending order. A candidate at or above size means
// a single direct multiplication and is kept once, as the largest entry.
func FilterLeafSizes(size int, candidates []int) []int {
	sorted := make([]int, len(candidates))
	copy(sorted, candidates)
	sort.Ints(sorted)

	var out []int
	for _, leaf := range sorted {
		if strassen.CheckSize(size, leaf) != nil {
			continue
		}
		out = append(out, leaf)
		if leaf >= size {
			break
		}
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Estimates
// ─────────────────────────────────────────────────────────────────────────────

// EstimateOptimalLeafSize estimates a leaf size from the CPU alone. It is
// used when no profile exists and no calibration is requested.
func EstimateOptimalLeafSize() int {
	switch {
	case runtime.GOARCH == "amd64" && cpu.X86.HasAVX512F:
		return 64
	case hasWideVectors():
		return 32
	default:
		return 16
	}
}

func hasWideVectors() bool {
	switch runtime.GOARCH {
	case "amd64":
		return cpu.X86.HasAVX2 && cpu.X86.HasFMA
	case "arm64":
		return cpu.ARM64.HasASIMD
	}
	return false
}

// ClampLeafSize bounds leaf to the candidate range.
func ClampLeafSize(leaf int) int {
	lo, hi := LeafSizeCandidates[0], LeafSizeCandidates[len(LeafSizeCandidates)-1]
	if leaf < lo {
		return lo
	}
	if leaf > hi {
		return hi
	}
	return leaf
}

// FitLeafSize returns the largest leaf size not above preferred that size
// can be halved down to, or strassen.DefaultLeafSize when none fits.
func FitLeafSize(size, preferred int) int {
	for leaf := preferred; leaf >= strassen.MinLeafSize; leaf-- {
		if strassen.CheckSize(size, leaf) == nil {
			return leaf
		}
	}
	return strassen.DefaultLeafSize
}
