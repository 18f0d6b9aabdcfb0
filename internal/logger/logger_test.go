package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
		"":      zapcore.InfoLevel,
	}
	for raw, want := range cases {
		for _, format := range []string{"json", "console"} {
			l, err := New(raw, format)
			if err != nil {
				t.Fatalf("new logger %q/%s: %v", raw, format, err)
			}
			if !l.Core().Enabled(want) {
				t.Fatalf("level %q/%s: expected %s enabled", raw, format, want)
			}
			if want > zapcore.DebugLevel && l.Core().Enabled(want-1) {
				t.Fatalf("level %q/%s: expected %s disabled", raw, format, want-1)
			}
		}
	}
}
