package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestInitWithOptionsFileOutput(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	path := filepath.Join(t.TempDir(), "nlpd.log")

	log, err := InitWithOptions(path, false)
	if err != nil {
		t.Fatal(err)
	}
	if log.GetLevel() != zerolog.InfoLevel {
		t.Errorf("expected info level by default, got %s", log.GetLevel())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Logger initialized") {
		t.Errorf("expected init entry in log file, got %q", data)
	}
}

func TestInitWithOptionsLevelFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")

	log, err := InitWithOptions("", false)
	if err != nil {
		t.Fatal(err)
	}
	if log.GetLevel() != zerolog.DebugLevel {
		t.Errorf("expected debug level, got %s", log.GetLevel())
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := []struct {
		in   string
		want zerolog.Level
	}{
		{"", zerolog.InfoLevel},
		{"debug", zerolog.DebugLevel},
		{" WARN ", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"trace", zerolog.TraceLevel},
		{"nonsense", zerolog.InfoLevel},
	}
	for _, c := range cases {
		if got := parseLogLevel(c.in); got != c.want {
			t.Errorf("parseLogLevel(%q) = %s, want %s", c.in, got, c.want)
		}
	}
}
