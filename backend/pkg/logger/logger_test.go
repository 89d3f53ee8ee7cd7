package logger

import (
	"context"
	"log/slog"
	"testing"
)

func TestInit(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
	}{
		{"debug level text", &Config{Level: "debug", Format: "text"}},
		{"info level json", &Config{Level: "info", Format: "json"}},
		{"warn level text", &Config{Level: "warn", Format: "text"}},
		{"error level json", &Config{Level: "error", Format: "json"}},
		{"default level", &Config{Level: "invalid", Format: "text"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Init(tt.config)
			// Just verify it doesn't panic
			slog.Info("test message")
		})
	}
}

func TestWithContext(t *testing.T) {
	Init(&Config{Level: "debug", Format: "text"})

	ctx := context.Background()
	ctx = context.WithValue(ctx, RequestIDKey, "test-request-id")
	ctx = context.WithValue(ctx, JobIDKey, "job-123")
	ctx = context.WithValue(ctx, UsernameKey, "test-user")

	logger := WithContext(ctx)
	if logger == nil {
		t.Fatal("Expected non-nil logger")
	}

	// Verify logging with the derived logger doesn't panic
	logger.Info("test with context")
}

func TestWithContextEmpty(t *testing.T) {
	Init(&Config{Level: "info", Format: "text"})

	logger := WithContext(context.Background())
	if logger == nil {
		t.Fatal("Expected non-nil logger for empty context")
	}

	Info(context.Background(), "info message")
	Debug(context.Background(), "debug message")
	Warn(context.Background(), "warn message")
	Error(context.Background(), "error message")
}
