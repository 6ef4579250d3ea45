package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ormasoftchile/appgen/pkg/config"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		verbose bool
		want    zerolog.Level
	}{
		{"default", "", false, zerolog.WarnLevel},
		{"configured", "info", false, zerolog.InfoLevel},
		{"upper case", "ERROR", false, zerolog.ErrorLevel},
		{"verbose wins", "error", true, zerolog.DebugLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, closeFn, err := New(config.LogConfig{Level: tt.level}, tt.verbose, &bytes.Buffer{})
			if err != nil {
				t.Fatal(err)
			}
			defer closeFn()
			if log.GetLevel() != tt.want {
				t.Errorf("level = %v, want %v", log.GetLevel(), tt.want)
			}
		})
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log, _, err := New(config.LogConfig{Level: "debug", Format: "json"}, false, &buf)
	if err != nil {
		t.Fatal(err)
	}
	log.Debug().Str("action", "render").Msg("exec")
	if !strings.Contains(buf.String(), `"action":"render"`) {
		t.Errorf("output = %q", buf.String())
	}
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "appgen.log")
	log, closeFn, err := New(config.LogConfig{Level: "info", File: path}, false, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	log.Info().Msg("pipeline started")
	if err := closeFn(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "pipeline started") {
		t.Errorf("log file = %q", data)
	}
}

func TestNew_Errors(t *testing.T) {
	if _, _, err := New(config.LogConfig{Level: "loud"}, false, &bytes.Buffer{}); err == nil {
		t.Error("expected error for bad level")
	}
	if _, _, err := New(config.LogConfig{Format: "xml"}, false, &bytes.Buffer{}); err == nil {
		t.Error("expected error for bad format")
	}
}
