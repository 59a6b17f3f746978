package logger

import "testing"

func TestParseLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   DebugLevel,
		" INFO ":  InfoLevel,
		"warn":    WarnLevel,
		"Warning": WarnLevel,
		"error":   ErrorLevel,
		"":        InfoLevel,
		"verbose": InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestUninitializedLoggerIsNoop(t *testing.T) {
	Info("not initialized", String("k", "v"))
	Sync()
}
