package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestNewWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "debug", "production")

	l.Debug().Str("caller", "u1").Msg("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["message"] != "hello" || entry["caller"] != "u1" || entry["service"] != "carehub" {
		t.Errorf("entry = %v", entry)
	}
}

func TestNewFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "loud", "production")

	if l.GetLevel() != zerolog.InfoLevel {
		t.Errorf("level = %v, want info", l.GetLevel())
	}
	l.Debug().Msg("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug written at info level: %q", buf.String())
	}
}

func TestNewInstallsGlobal(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "info", "development")

	log.Info().Msg("via global")
	if !strings.Contains(buf.String(), "via global") {
		t.Errorf("global logger not installed, got %q", buf.String())
	}
	if strings.HasPrefix(strings.TrimSpace(buf.String()), "{") {
		t.Error("development output should not be JSON")
	}
}
