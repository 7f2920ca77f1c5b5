package slog

import (
	"bytes"
	"encoding/json"
	stdslog "log/slog"
	"testing"

	"github.com/unkn0wn-root/recordcache"
)

func TestSlogLoggerLevelsAndFields(t *testing.T) {
	var buf bytes.Buffer
	l := Logger{L: stdslog.New(stdslog.NewJSONHandler(&buf, &stdslog.HandlerOptions{Level: stdslog.LevelInfo}))}

	l.Debug("dropped", recordcache.Fields{"key": "k"})
	if buf.Len() != 0 {
		t.Fatalf("debug must be filtered at info level: %s", buf.String())
	}

	l.Error("cache encode failed", recordcache.Fields{"key": "T::id::1"})
	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("unmarshal %q: %v", buf.String(), err)
	}
	if rec["level"] != "ERROR" || rec["msg"] != "cache encode failed" || rec["key"] != "T::id::1" {
		t.Fatalf("unexpected record %v", rec)
	}
}
