package internal

import "testing"

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"ERROR", LogLevelError},
		{"warn", LogLevelWarn},
		{"", LogLevelInfo},
		{"bogus", LogLevelInfo},
		{" DEBUG ", LogLevelDebug},
		{"TRACE", LogLevelTrace},
	}

	for _, tt := range tests {
		if got := ParseLogLevel(tt.in); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.Info("[Test] %d rows", 3)
	l.With("component", "test").Trace("ignored")
	if l.GetLevel() != LogLevelError {
		t.Errorf("expected nop logger at error level, got %d", l.GetLevel())
	}
}
