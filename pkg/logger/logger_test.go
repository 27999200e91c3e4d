package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go-vaccination-booking/config"

	"github.com/sirupsen/logrus"
)

func TestNewWritesJSONToRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	log := New(config.LogConfig{Level: "debug", File: path, MaxSizeMB: 1})
	t.Cleanup(func() { log.SetOutput(os.Stdout) })

	if log.GetLevel() != logrus.DebugLevel {
		t.Fatalf("level = %v, want debug", log.GetLevel())
	}

	log.WithField("slot_id", "abc").Info("slot booked")

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(raw)
	if !strings.Contains(line, `"msg":"slot booked"`) || !strings.Contains(line, `"slot_id":"abc"`) {
		t.Errorf("log line = %q, want JSON with message and field", line)
	}
}

func TestNewFallsBackToInfo(t *testing.T) {
	log := New(config.LogConfig{Level: "loud"})
	if log.GetLevel() != logrus.InfoLevel {
		t.Errorf("level = %v, want info", log.GetLevel())
	}
}
