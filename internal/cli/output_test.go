package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/agbru/strassen/internal/testutil"
)

func TestWriteResultToFile(t *testing.T) {
	t.Parallel()
	product := testutil.MustMatrix(t, 2, 0.5, -1, 1e-20, 3)
	path := filepath.Join(t.TempDir(), "nested", "product.txt")

	err := WriteResultToFile(product, time.Second, "Strassen (parallel)", OutputConfig{OutputFile: path})
	if err != nil {
		t.Fatalf("WriteResultToFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	for _, want := range []string{"# Algorithm: Strassen (parallel)", "# Size: 2", "\n0.5 -1\n1e-20 3\n"} {
		if !strings.Contains(content, want) {
			t.Errorf("file is missing %q:\n%s", want, content)
		}
	}
}

func TestWriteResultToFileWithoutPath(t *testing.T) {
	t.Parallel()
	if err := WriteResultToFile(testutil.MustMatrix(t, 1, 1), 0, "naive", OutputConfig{}); err != nil {
		t.Errorf("expected no-op, got %v", err)
	}
}

func TestWriteResultToFileUnwritable(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	err := WriteResultToFile(testutil.MustMatrix(t, 1, 1), 0, "naive", OutputConfig{OutputFile: filepath.Join(blocker, "out.txt")})
	if err == nil {
		t.Error("expected an error when the parent is a file")
	}
}

func TestDisplayResultWithConfig(t *testing.T) {
	t.Parallel()
	product := testutil.MustMatrix(t, 2, 19, 22, 43, 50)

	t.Run("Quiet", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		if err := DisplayResultWithConfig(&buf, product, time.Second, "naive", OutputConfig{Quiet: true}); err != nil {
			t.Fatal(err)
		}
		if got := buf.String(); got != "size=2 sum=134 trace=69 duration=1s\n" {
			t.Errorf("quiet output = %q", got)
		}
	})

	t.Run("Saved", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		path := filepath.Join(t.TempDir(), "c.txt")
		if err := DisplayResultWithConfig(&buf, product, time.Second, "naive", OutputConfig{OutputFile: path}); err != nil {
			t.Fatal(err)
		}
		out := testutil.StripAnsiCodes(buf.String())
		if !strings.Contains(out, "Product size: 2 x 2") || !strings.Contains(out, "Product saved to: "+path) {
			t.Errorf("unexpected output:\n%s", out)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("product file not written: %v", err)
		}
	})
}
