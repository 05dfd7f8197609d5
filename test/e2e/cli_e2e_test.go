package e2e

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// buildBinary compiles ./cmd/strassen into a temporary directory. go test
// runs in the package directory, so the build runs from the module root.
func buildBinary(t *testing.T) string {
	t.Helper()
	binName := "strassen"
	if runtime.GOOS == "windows" {
		binName += ".exe"
	}
	binPath := filepath.Join(t.TempDir(), binName)

	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/strassen")
	cmd.Dir = "../.."
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("Failed to build strassen: %v", err)
	}
	return binPath
}

// TestCLI_E2E verifies the built binary end to end, exit codes included.
func TestCLI_E2E(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping end-to-end build in short mode")
	}
	binPath := buildBinary(t)

	tests := []struct {
		name     string
		args     []string
		wantOut  string // substring match (case-insensitive)
		wantCode int
	}{
		{
			name:     "Comparison run",
			args:     []string{"-n", "32", "-leaf", "4", "-no-color"},
			wantOut:  "Global Status: Success",
			wantCode: 0,
		},
		{
			name:     "JSON Output",
			args:     []string{"-n", "16", "-leaf", "4", "-json"},
			wantOut:  `"agree": true`,
			wantCode: 0,
		},
		{
			name:     "Quiet single algorithm",
			args:     []string{"-n", "16", "-leaf", "2", "-algo", "parallel", "-q"},
			wantOut:  "size=16 sum=",
			wantCode: 0,
		},
		{
			name:     "Size not reducible to the leaf",
			args:     []string{"-n", "24", "-leaf", "2"},
			wantOut:  "Configuration error",
			wantCode: 4,
		},
		{
			name:     "Unknown algorithm",
			args:     []string{"-algo", "winograd"},
			wantOut:  "unrecognized algorithm",
			wantCode: 4,
		},
		{
			name:     "Benchmark CSV on stdout",
			args:     []string{"-bench", "-bench-first", "4", "-bench-last", "16", "-bench-repeats", "1", "-algo", "strassen", "-leaf", "4", "-csv", "-"},
			wantOut:  "\n16,",
			wantCode: 0,
		},
		{
			name:     "Completion",
			args:     []string{"-completion", "bash"},
			wantOut:  "complete -F",
			wantCode: 0,
		},
		{
			name:     "Version",
			args:     []string{"-version"},
			wantOut:  "strassen dev",
			wantCode: 0,
		},
		{
			name:     "Help",
			args:     []string{"--help"},
			wantOut:  "usage",
			wantCode: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := exec.Command(binPath, tt.args...)
			cmd.Env = append(os.Environ(), "NO_COLOR=1")
			cmd.Dir = t.TempDir()
			output, err := cmd.CombinedOutput()

			code := 0
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				code = exitErr.ExitCode()
			} else if err != nil {
				t.Fatalf("Command failed to run: %v", err)
			}
			if code != tt.wantCode {
				t.Errorf("exit code %d, want %d\nOutput: %s", code, tt.wantCode, output)
			}

			if !strings.Contains(strings.ToLower(string(output)), strings.ToLower(tt.wantOut)) {
				t.Errorf("Output missing expected string.\nExpected: %q\nGot:\n%s", tt.wantOut, output)
			}
		})
	}
}
