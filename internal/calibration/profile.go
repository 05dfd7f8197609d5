// Package calibration finds the leaf size at which the Strassen recursion
// should switch to direct multiplication on the current machine.
// This file implements calibration profile persistence.
package calibration

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sys/cpu"
)

// CalibrationProfile stores the result of a calibration run together with
// the hardware context needed to decide whether it can be reused.
type CalibrationProfile struct {
	// Hardware identification
	CPUModel    string   `json:"cpu_model"`
	CPUFeatures []string `json:"cpu_features,omitempty"`
	NumCPU      int      `json:"num_cpu"`
	GOMAXPROCS  int      `json:"gomaxprocs"`
	GOARCH      string   `json:"goarch"`
	GOOS        string   `json:"goos"`
	GoVersion   string   `json:"go_version"`

	// Calibrated leaf size
	OptimalLeafSize int `json:"optimal_leaf_size"`

	// Calibration metadata
	CalibratedAt    time.Time `json:"calibrated_at"`
	CalibrationSize int       `json:"calibration_size"`
	CalibrationTime string    `json:"calibration_time"`

	// Version for forward compatibility
	ProfileVersion int `json:"profile_version"`
}

const (
	// CurrentProfileVersion is the current version of the profile format.
	CurrentProfileVersion = 1

	// DefaultProfileFileName is the default name for the calibration profile file.
	DefaultProfileFileName = ".strassen_calibration.json"

	// MaxProfileAge is the age after which a profile is recalibrated.
	MaxProfileAge = 30 * 24 * time.Hour
)

// GetDefaultProfilePath returns the default path for the calibration profile.
// It uses the user's home directory if available, otherwise the current directory.
func GetDefaultProfilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultProfileFileName
	}
	return filepath.Join(home, DefaultProfileFileName)
}

func resolvePath(path string) string {
	if path == "" {
		return GetDefaultProfilePath()
	}
	return path
}

// NewProfile creates a new CalibrationProfile with current hardware info.
func NewProfile() *CalibrationProfile {
	return &CalibrationProfile{
		CPUModel:       getCPUModel(),
		CPUFeatures:    cpuFeatures(),
		NumCPU:         runtime.NumCPU(),
		GOMAXPROCS:     runtime.GOMAXPROCS(0),
		GOARCH:         runtime.GOARCH,
		GOOS:           runtime.GOOS,
		GoVersion:      runtime.Version(),
		CalibratedAt:   time.Now(),
		ProfileVersion: CurrentProfileVersion,
	}
}

func getCPUModel() string {
	return fmt.Sprintf("%s-%d-cores", runtime.GOARCH, runtime.NumCPU())
}

// cpuFeatures lists the vector extensions relevant to the direct
// multiplication kernel.
func cpuFeatures() []string {
	var features []string
	add := func(ok bool, name string) {
		if ok {
			features = append(features, name)
		}
	}
	switch runtime.GOARCH {
	case "amd64", "386":
		add(cpu.X86.HasSSE2, "sse2")
		add(cpu.X86.HasSSE41, "sse4.1")
		add(cpu.X86.HasAVX, "avx")
		add(cpu.X86.HasAVX2, "avx2")
		add(cpu.X86.HasFMA, "fma")
		add(cpu.X86.HasAVX512F, "avx512f")
	case "arm64":
		add(cpu.ARM64.HasASIMD, "asimd")
		add(cpu.ARM64.HasFP, "fp")
		add(cpu.ARM64.HasSVE, "sve")
	}
	return features
}

// LoadProfile loads a calibration profile from the specified path.
// Returns nil and an error if the file doesn't exist or can't be parsed.
func LoadProfile(path string) (*CalibrationProfile, error) {
	data, err := os.ReadFile(resolvePath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	var profile CalibrationProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}

	return &profile, nil
}

// SaveProfile saves the calibration profile to the specified path.
// If path is empty, uses the default profile path.
func (p *CalibrationProfile) SaveProfile(path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	if err := os.WriteFile(resolvePath(path), data, 0600); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}

	return nil
}

// IsValid checks if the profile can be reused on this machine: same format
// version, CPU count and architecture, a usable leaf size, and not older
// than MaxProfileAge.
func (p *CalibrationProfile) IsValid() bool {
	if p == nil {
		return false
	}
	if p.ProfileVersion != CurrentProfileVersion {
		return false
	}
	if p.NumCPU != runtime.NumCPU() || p.GOARCH != runtime.GOARCH {
		return false
	}
	if p.OptimalLeafSize < 1 {
		return false
	}
	return !p.IsStale(MaxProfileAge)
}

// IsStale checks if the profile is older than the given duration.
func (p *CalibrationProfile) IsStale(maxAge time.Duration) bool {
	if p == nil {
		return true
	}
	return time.Since(p.CalibratedAt) > maxAge
}

// String returns a human-readable summary of the profile.
func (p *CalibrationProfile) String() string {
	if p == nil {
		return "<nil profile>"
	}
	return fmt.Sprintf(
		"CalibrationProfile{CPU: %s, GOMAXPROCS: %d, Leaf: %d, Size: %d, Calibrated: %s}",
		p.CPUModel,
		p.GOMAXPROCS,
		p.OptimalLeafSize,
		p.CalibrationSize,
		p.CalibratedAt.Format(time.RFC3339),
	)
}

// LoadOrCreateProfile loads an existing profile or creates a new one if not
// found. The boolean reports whether a reusable profile was loaded.
func LoadOrCreateProfile(path string) (*CalibrationProfile, bool) {
	profile, err := LoadProfile(path)
	if err != nil || !profile.IsValid() {
		return NewProfile(), false
	}
	return profile, true
}

// ProfileExists checks if a calibration profile exists at the given path.
func ProfileExists(path string) bool {
	_, err := os.Stat(resolvePath(path))
	return err == nil
}
