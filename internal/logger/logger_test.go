package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want *zapcore.Level
	}{
		{"debug", levelPtr(zapcore.DebugLevel)},
		{"warn", levelPtr(zapcore.WarnLevel)},
		{"error", levelPtr(zapcore.ErrorLevel)},
		{"verbose", nil},
	}
	for _, tt := range tests {
		got := parseLevel(tt.in)
		switch {
		case tt.want == nil && got != nil:
			t.Errorf("parseLevel(%q) = %v, want nil", tt.in, *got)
		case tt.want != nil && (got == nil || *got != *tt.want):
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, *tt.want)
		}
	}
}

func TestNopChildrenAreUsable(t *testing.T) {
	l := NewNop().Named("store").With(String("kind", "news"))
	l.Info("replaced catalog", Int("items", 3))
	l.Debugf("ignored %d", 1)
	if err := l.Sync(); err != nil {
		t.Errorf("Sync() = %v", err)
	}
}

func levelPtr(l zapcore.Level) *zapcore.Level { return &l }
