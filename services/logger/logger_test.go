package logsvc

import (
	"bytes"
	"log"
	"reflect"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/trezcool/aula/core"
	"github.com/trezcool/aula/core/auth"
)

func TestConsoleLogger(t *testing.T) {
	tests := []struct {
		level     string
		wantLines []string
		skipped   []string
	}{
		{level: "debug", wantLines: []string{"DEBUG d", "INFO i", "WARN w", "ERROR e"}},
		{level: "info", wantLines: []string{"INFO i", "WARN w", "ERROR e"}, skipped: []string{"DEBUG"}},
		{level: "WARNING", wantLines: []string{"WARN w", "ERROR e"}, skipped: []string{"DEBUG", "INFO"}},
		{level: "error", wantLines: []string{"ERROR e"}, skipped: []string{"DEBUG", "INFO", "WARN"}},
		{level: "lol", wantLines: []string{"INFO i"}, skipped: []string{"DEBUG"}},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewConsoleLogger(log.New(&buf, "", 0), ParseLevel(tt.level))
			logger.Debug("d")
			logger.Info("i")
			logger.Warn("w", map[string]interface{}{"table": "courses"})
			logger.Error("e")

			out := buf.String()
			for _, line := range tt.wantLines {
				if !strings.Contains(out, line) {
					t.Errorf("output %q misses %q", out, line)
				}
			}
			for _, prefix := range tt.skipped {
				if strings.Contains(out, prefix+" ") {
					t.Errorf("output %q should not contain %s entries", out, prefix)
				}
			}
			if strings.Contains(out, "WARN w") && !strings.Contains(out, "map[table:courses]") {
				t.Errorf("output %q misses the warning fields", out)
			}
		})
	}
}

func TestRollbarLogger_prepare(t *testing.T) {
	conf := &core.Config{Env: "TEST", Debug: true, LogLevel: "warn"}
	conf.Roble.ProjectID = "proj"
	logger := NewRollbarLogger(log.New(&bytes.Buffer{}, "", 0), conf)

	herr := core.NewHTTPError("read courses", 503, []byte(`{"message":"down"}`))
	usr := auth.AuthUser{ID: "u1", Email: "ana@uni.edu"}
	got := logger.prepare("reading failed", []interface{}{
		usr,
		errors.Wrap(herr, "listing courses"),
		map[string]interface{}{"table": "courses"},
		auth.AuthUser{ID: "u2"},
	})

	if len(got) != 3 {
		t.Fatalf("prepare() = %v, want msg, error and custom data", got)
	}
	if got[0] != "reading failed" {
		t.Errorf("prepare()[0] = %v, want the message", got[0])
	}
	if _, ok := got[1].(error); !ok {
		t.Errorf("prepare()[1] = %T, want the error", got[1])
	}
	wantCustom := map[string]interface{}{"project": "proj", "table": "courses", "op": "read courses", "status": 503}
	if !reflect.DeepEqual(got[2], wantCustom) {
		t.Errorf("prepare() custom = %v, want %v", got[2], wantCustom)
	}
}

func TestRollbarLogger_level(t *testing.T) {
	var buf bytes.Buffer
	conf := &core.Config{Env: "TEST", Debug: true, LogLevel: "warn"}
	logger := NewRollbarLogger(log.New(&buf, "", 0), conf)

	logger.Info("skipped")
	logger.Warn("kept")
	if out := buf.String(); strings.Contains(out, "skipped") || !strings.Contains(out, "WARN kept") {
		t.Errorf("output = %q, want only the warning", out)
	}
}
