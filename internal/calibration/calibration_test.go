package calibration

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/agbru/strassen/internal/config"
	apperrors "github.com/agbru/strassen/internal/errors"
	"github.com/agbru/strassen/internal/strassen"
	"github.com/agbru/strassen/internal/testutil"
)

func realRegistry() map[string]strassen.Multiplier {
	return strassen.NewDefaultFactory().GetAll()
}

func saveTestProfile(t *testing.T, leaf int) string {
	t.Helper()
	profilePath := filepath.Join(t.TempDir(), "profile.json")
	profile := NewProfile()
	profile.OptimalLeafSize = leaf
	if err := profile.SaveProfile(profilePath); err != nil {
		t.Fatalf("Failed to save profile: %v", err)
	}
	return profilePath
}

func TestRunCalibrationWithOptions_LoadProfile(t *testing.T) {
	t.Parallel()
	profilePath := saveTestProfile(t, 16)

	var out bytes.Buffer
	// The registry is not consulted when the cached profile is used.
	exitCode := RunCalibrationWithOptions(context.Background(), config.AppConfig{N: 64}, &out,
		map[string]strassen.Multiplier{}, CalibrationOptions{ProfilePath: profilePath, LoadProfile: true})

	if exitCode != apperrors.ExitSuccess {
		t.Errorf("exit code %d, want 0", exitCode)
	}
	if !strings.Contains(testutil.StripAnsiCodes(out.String()), "Using cached calibration: -leaf 16") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestRunCalibrationWithOptions_Success(t *testing.T) {
	t.Parallel()
	profilePath := filepath.Join(t.TempDir(), "profile.json")
	cfg := config.AppConfig{N: 32, Seed: 1, LeafSize: 8}

	var out bytes.Buffer
	exitCode := RunCalibrationWithOptions(context.Background(), cfg, &out, realRegistry(), CalibrationOptions{
		ProfilePath: profilePath,
		SaveProfile: true,
		Candidates:  []int{4, 8, 16},
		Repeats:     1,
	})
	if exitCode != apperrors.ExitSuccess {
		t.Fatalf("exit code %d, output:\n%s", exitCode, out.String())
	}

	output := testutil.StripAnsiCodes(out.String())
	for _, want := range []string{"Calibration Summary", "Recommendation for this machine: -leaf", "Calibration profile saved to " + profilePath} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}

	profile, err := LoadProfile(profilePath)
	if err != nil {
		t.Fatal(err)
	}
	switch profile.OptimalLeafSize {
	case 4, 8, 16:
	default:
		t.Errorf("saved leaf size %d is not a candidate", profile.OptimalLeafSize)
	}
	if profile.CalibrationSize != 32 {
		t.Errorf("CalibrationSize = %d, want 32", profile.CalibrationSize)
	}
}

func TestRunCalibrationWithOptions_Failures(t *testing.T) {
	t.Parallel()
	failing := map[string]strassen.Multiplier{
		strassen.AlgoParallel: &strassen.MockMultiplier{Err: errors.New("simulated error")},
	}
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name     string
		ctx      context.Context
		cfg      config.AppConfig
		registry map[string]strassen.Multiplier
		opts     CalibrationOptions
		wantCode int
		wantText string
	}{
		{
			name:     "Missing parallel multiplier",
			ctx:      context.Background(),
			cfg:      config.AppConfig{N: 32},
			registry: map[string]strassen.Multiplier{},
			wantCode: apperrors.ExitErrorGeneric,
			wantText: "'parallel' algorithm is required",
		},
		{
			name:     "Every trial fails",
			ctx:      context.Background(),
			cfg:      config.AppConfig{N: 32},
			registry: failing,
			opts:     CalibrationOptions{Candidates: []int{4, 8}},
			wantCode: apperrors.ExitErrorGeneric,
			wantText: "Calibration failed: no valid results obtained.",
		},
		{
			name:     "No candidate fits the size",
			ctx:      context.Background(),
			cfg:      config.AppConfig{N: 96},
			registry: realRegistry(),
			opts:     CalibrationOptions{Candidates: []int{32}},
			wantCode: apperrors.ExitErrorConfig,
			wantText: "no leaf size candidate divides matrix size 96",
		},
		{
			name:     "Canceled",
			ctx:      canceled,
			cfg:      config.AppConfig{N: 32},
			registry: realRegistry(),
			opts:     CalibrationOptions{Candidates: []int{4, 8}},
			wantCode: apperrors.ExitErrorCanceled,
			wantText: "Calibration interrupted.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var out bytes.Buffer
			tt.opts.ProfilePath = filepath.Join(t.TempDir(), "profile.json")
			if code := RunCalibrationWithOptions(tt.ctx, tt.cfg, &out, tt.registry, tt.opts); code != tt.wantCode {
				t.Errorf("exit code %d, want %d", code, tt.wantCode)
			}
			if !strings.Contains(testutil.StripAnsiCodes(out.String()), tt.wantText) {
				t.Errorf("output missing %q:\n%s", tt.wantText, out.String())
			}
		})
	}
}

func TestRunCalibration_UsesConfiguredProfilePath(t *testing.T) {
	t.Parallel()
	profilePath := filepath.Join(t.TempDir(), "profile.json")
	cfg := config.AppConfig{N: 16, Seed: 1, LeafSize: 8, CalibrationProfile: profilePath}

	if code := RunCalibration(context.Background(), cfg, io.Discard, realRegistry()); code != apperrors.ExitSuccess {
		t.Fatalf("exit code %d", code)
	}
	if !ProfileExists(profilePath) {
		t.Error("expected the profile at the configured path")
	}
}

func TestAutoCalibrateWithProfile(t *testing.T) {
	t.Parallel()

	t.Run("Cached profile", func(t *testing.T) {
		t.Parallel()
		profilePath := saveTestProfile(t, 32)
		var out bytes.Buffer
		updated, ok := AutoCalibrateWithProfile(context.Background(), config.AppConfig{N: 256, LeafSize: 8}, &out, realRegistry(), profilePath)
		if !ok || updated.LeafSize != 32 {
			t.Errorf("got (%d, %v), want (32, true)", updated.LeafSize, ok)
		}
		if !strings.Contains(testutil.StripAnsiCodes(out.String()), "Using cached calibration: leaf size=32") {
			t.Errorf("unexpected output:\n%s", out.String())
		}
	})

	t.Run("Missing parallel multiplier", func(t *testing.T) {
		t.Parallel()
		cfg := config.AppConfig{N: 64, LeafSize: 8}
		updated, ok := AutoCalibrateWithProfile(context.Background(), cfg, io.Discard, map[string]strassen.Multiplier{}, "")
		if ok || updated.LeafSize != 8 {
			t.Errorf("got (%d, %v), want (8, false)", updated.LeafSize, ok)
		}
	})

	t.Run("Fresh calibration", func(t *testing.T) {
		t.Parallel()
		profilePath := filepath.Join(t.TempDir(), "profile.json")
		cfg := config.AppConfig{N: 64, LeafSize: 8, Seed: 1}
		updated, ok := AutoCalibrateWithProfile(context.Background(), cfg, io.Discard, realRegistry(), profilePath)
		if !ok {
			t.Fatal("expected calibration to succeed")
		}
		if err := strassen.CheckSize(cfg.N, updated.LeafSize); err != nil {
			t.Errorf("calibrated leaf size %d does not fit size %d: %v", updated.LeafSize, cfg.N, err)
		}
		if !ProfileExists(profilePath) {
			t.Error("expected the profile to be saved")
		}
	})
}

func TestLoadCachedCalibration(t *testing.T) {
	t.Parallel()
	profilePath := saveTestProfile(t, 64)

	updated, ok := LoadCachedCalibration(config.AppConfig{N: 96, LeafSize: 8}, profilePath)
	if !ok {
		t.Fatal("expected the cached profile to load")
	}
	if updated.LeafSize != 48 {
		t.Errorf("LeafSize = %d, want 48 (64 fitted to size 96)", updated.LeafSize)
	}

	if _, ok := LoadCachedCalibration(config.AppConfig{N: 96}, filepath.Join(t.TempDir(), "none.json")); ok {
		t.Error("expected no cached calibration for a missing profile")
	}
}
