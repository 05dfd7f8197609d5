package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	stdlog "log"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestZerologAdapter_Fields(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	l := NewLogger(&buf, "server")

	l.Info("request served",
		String("path", "/multiply"),
		Int("size", 64),
		Float64("gflops", 1.5),
		Duration("took", 3*time.Millisecond),
	)

	var event map[string]any
	if err := json.Unmarshal(buf.Bytes(), &event); err != nil {
		t.Fatalf("invalid JSON log line %q: %v", buf.String(), err)
	}
	if event["component"] != "server" || event["path"] != "/multiply" || event["size"] != 64.0 {
		t.Errorf("unexpected event %v", event)
	}
	if event["level"] != "info" || event["message"] != "request served" {
		t.Errorf("unexpected level/message in %v", event)
	}
}

func TestZerologAdapter_LevelsAndWith(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	l := NewZerologAdapter(zerolog.New(&buf)).With(String("request_id", "abc"))

	l.Warn("budget exhausted")
	l.Error("multiply failed", errors.New("boom"), Err(errors.New("ignored duplicate")))
	l.Printf("size=%d", 8)
	l.Println("a", "b")

	out := buf.String()
	for _, want := range []string{`"level":"warn"`, `"level":"error"`, `"error":"boom"`, "size=8", `"a b"`, `"request_id":"abc"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in output:\n%s", want, out)
		}
	}
}

func TestStdLoggerAdapter(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	l := NewStdLoggerAdapter(stdlog.New(&buf, "", 0))

	l.Info("started", Int("port", 8080))
	l.Warn("slow")
	l.Error("failed", errors.New("boom"))
	l.Debug("details")

	want := "[INFO] started port=8080\n[WARN] slow\n[ERROR] failed: boom\n[DEBUG] details\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestSetupGlobal(t *testing.T) {
	var buf bytes.Buffer
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	SetupGlobal(&buf, false)
	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Errorf("expected info level, got %v", zerolog.GlobalLevel())
	}
	SetupGlobal(&buf, true)
	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Errorf("expected debug level, got %v", zerolog.GlobalLevel())
	}
}
