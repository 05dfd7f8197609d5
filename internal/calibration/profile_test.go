package calibration

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestNewProfile(t *testing.T) {
	t.Parallel()
	profile := NewProfile()

	if profile == nil {
		t.Fatal("NewProfile returned nil")
	}
	if profile.NumCPU != runtime.NumCPU() {
		t.Errorf("NumCPU = %d, want %d", profile.NumCPU, runtime.NumCPU())
	}
	if profile.GOMAXPROCS != runtime.GOMAXPROCS(0) {
		t.Errorf("GOMAXPROCS = %d, want %d", profile.GOMAXPROCS, runtime.GOMAXPROCS(0))
	}
	if profile.GOARCH != runtime.GOARCH {
		t.Errorf("GOARCH = %s, want %s", profile.GOARCH, runtime.GOARCH)
	}
	if profile.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %s, want %s", profile.GoVersion, runtime.Version())
	}
	if profile.ProfileVersion != CurrentProfileVersion {
		t.Errorf("ProfileVersion = %d, want %d", profile.ProfileVersion, CurrentProfileVersion)
	}
	if profile.CalibratedAt.IsZero() {
		t.Error("CalibratedAt is zero")
	}
	if runtime.GOARCH == "amd64" && len(profile.CPUFeatures) == 0 {
		t.Error("amd64 always has SSE2; expected at least one feature")
	}
}

func TestProfileSaveLoad(t *testing.T) {
	t.Parallel()
	profilePath := filepath.Join(t.TempDir(), "test_profile.json")

	original := NewProfile()
	original.OptimalLeafSize = 32
	original.CalibrationSize = 512
	original.CalibrationTime = "1.5s"

	if err := original.SaveProfile(profilePath); err != nil {
		t.Fatalf("Failed to save profile: %v", err)
	}

	loaded, err := LoadProfile(profilePath)
	if err != nil {
		t.Fatalf("Failed to load profile: %v", err)
	}
	if loaded.OptimalLeafSize != 32 {
		t.Errorf("OptimalLeafSize = %d, want 32", loaded.OptimalLeafSize)
	}
	if loaded.CalibrationSize != 512 {
		t.Errorf("CalibrationSize = %d, want 512", loaded.CalibrationSize)
	}
	if loaded.NumCPU != original.NumCPU {
		t.Errorf("NumCPU = %d, want %d", loaded.NumCPU, original.NumCPU)
	}
	if strings.Join(loaded.CPUFeatures, ",") != strings.Join(original.CPUFeatures, ",") {
		t.Errorf("CPUFeatures = %v, want %v", loaded.CPUFeatures, original.CPUFeatures)
	}

	info, err := os.Stat(profilePath)
	if err != nil {
		t.Fatal(err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0600 {
		t.Errorf("profile mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestProfileIsValid(t *testing.T) {
	t.Parallel()
	valid := NewProfile()
	valid.OptimalLeafSize = 16

	tests := []struct {
		name   string
		mutate func(p *CalibrationProfile)
		want   bool
	}{
		{"Current hardware", func(p *CalibrationProfile) {}, true},
		{"Wrong CPU count", func(p *CalibrationProfile) { p.NumCPU = 999 }, false},
		{"Wrong architecture", func(p *CalibrationProfile) { p.GOARCH = "invalid_arch" }, false},
		{"Wrong version", func(p *CalibrationProfile) { p.ProfileVersion = 999 }, false},
		{"No leaf size", func(p *CalibrationProfile) { p.OptimalLeafSize = 0 }, false},
		{"Stale", func(p *CalibrationProfile) { p.CalibratedAt = time.Now().Add(-MaxProfileAge - time.Hour) }, false},
		{"Different GOMAXPROCS", func(p *CalibrationProfile) { p.GOMAXPROCS = 999 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := *valid
			tt.mutate(&p)
			if got := p.IsValid(); got != tt.want {
				t.Errorf("IsValid() = %v, want %v", got, tt.want)
			}
		})
	}

	var nilProfile *CalibrationProfile
	if nilProfile.IsValid() {
		t.Error("Expected nil profile to be invalid")
	}
}

func TestProfileIsStale(t *testing.T) {
	t.Parallel()
	profile := NewProfile()

	if profile.IsStale(time.Hour) {
		t.Error("Expected fresh profile to not be stale")
	}

	profile.CalibratedAt = time.Now().Add(-2 * time.Hour)
	if !profile.IsStale(time.Hour) {
		t.Error("Expected old profile to be stale")
	}

	var nilProfile *CalibrationProfile
	if !nilProfile.IsStale(time.Hour) {
		t.Error("Expected nil profile to be stale")
	}
}

func TestProfileString(t *testing.T) {
	t.Parallel()
	profile := NewProfile()
	profile.OptimalLeafSize = 64
	profile.CalibrationSize = 1024

	str := profile.String()
	for _, want := range []string{"Leaf: 64", "Size: 1024", profile.CPUModel} {
		if !strings.Contains(str, want) {
			t.Errorf("String() = %q, missing %q", str, want)
		}
	}

	var nilProfile *CalibrationProfile
	if nilProfile.String() != "<nil profile>" {
		t.Errorf("nil String() = %q", nilProfile.String())
	}
}

func TestLoadNonExistentProfile(t *testing.T) {
	t.Parallel()
	if _, err := LoadProfile("/nonexistent/path/to/profile.json"); err == nil {
		t.Error("Expected error loading nonexistent profile")
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	t.Parallel()
	invalidPath := filepath.Join(t.TempDir(), "invalid.json")
	if err := os.WriteFile(invalidPath, []byte("not valid json"), 0644); err != nil {
		t.Fatalf("Failed to write invalid file: %v", err)
	}

	if _, err := LoadProfile(invalidPath); err == nil {
		t.Error("Expected error loading invalid JSON")
	}
}

func TestSaveProfileError(t *testing.T) {
	t.Parallel()
	err := NewProfile().SaveProfile(filepath.Join(t.TempDir(), "missing", "dir", "profile.json"))
	if err == nil || !strings.Contains(err.Error(), "failed to write profile") {
		t.Errorf("expected write error, got %v", err)
	}
}

func TestLoadOrCreateProfile(t *testing.T) {
	t.Parallel()
	profilePath := filepath.Join(t.TempDir(), "profile.json")

	profile, loaded := LoadOrCreateProfile(profilePath)
	if loaded {
		t.Error("Expected loaded to be false for nonexistent file")
	}
	if profile == nil {
		t.Fatal("Expected profile to not be nil")
	}

	profile.OptimalLeafSize = 32
	if err := profile.SaveProfile(profilePath); err != nil {
		t.Fatalf("Failed to save profile: %v", err)
	}

	profile2, loaded2 := LoadOrCreateProfile(profilePath)
	if !loaded2 {
		t.Error("Expected loaded to be true for existing file")
	}
	if profile2.OptimalLeafSize != 32 {
		t.Errorf("Loaded profile has wrong leaf size: %d", profile2.OptimalLeafSize)
	}

	profile2.NumCPU = runtime.NumCPU() + 1
	if err := profile2.SaveProfile(profilePath); err != nil {
		t.Fatal(err)
	}
	if _, loaded3 := LoadOrCreateProfile(profilePath); loaded3 {
		t.Error("Expected a profile from another CPU count to be rejected")
	}
}

func TestProfileExists(t *testing.T) {
	t.Parallel()
	profilePath := filepath.Join(t.TempDir(), "profile.json")

	if ProfileExists(profilePath) {
		t.Error("Expected ProfileExists to return false for nonexistent file")
	}
	if err := NewProfile().SaveProfile(profilePath); err != nil {
		t.Fatalf("Failed to save profile: %v", err)
	}
	if !ProfileExists(profilePath) {
		t.Error("Expected ProfileExists to return true for existing file")
	}
}

func TestGetDefaultProfilePath(t *testing.T) {
	t.Parallel()
	path := GetDefaultProfilePath()
	if filepath.Base(path) != DefaultProfileFileName {
		t.Errorf("Path %s doesn't end with %s", path, DefaultProfileFileName)
	}
	if resolvePath("") != path {
		t.Error("empty path should resolve to the default path")
	}
	if resolvePath("x.json") != "x.json" {
		t.Error("explicit path should be kept")
	}
}
