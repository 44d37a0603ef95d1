package logger

import "testing"

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  LogLevel
	}{
		{"debug", DebugLevel},
		{"INFO", InfoLevel},
		{"Warn", WarnLevel},
		{"warning", WarnLevel},
		{"error", ErrorLevel},
		{"nonsense", InfoLevel},
		{"", InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestSimpleLoggerLevelFiltering(t *testing.T) {
	// Logging below the configured level must be a no-op and must not
	// panic with nil fields.
	log := NewSimpleLogger("test", "error")
	log.Debug("dropped", nil)
	log.Info("dropped", map[string]interface{}{"k": "v"})
	log.Warn("dropped", nil)

	log.SetLevel("debug")
	log.Debug("emitted", map[string]interface{}{"k": "v"})
}
