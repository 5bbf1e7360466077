package main

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
	}{
		{level: "", expected: zerolog.InfoLevel},
		{level: "debug", expected: zerolog.DebugLevel},
		{level: " WARN ", expected: zerolog.WarnLevel},
		{level: "error", expected: zerolog.ErrorLevel},
		{level: "verbose", expected: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			if got := parseLevel(tt.level); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.level, got, tt.expected)
			}
		})
	}
}

func TestNewAppAppliesConfiguredLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("MARKET_DATA_SOURCE", "yahoo")
	t.Setenv("COMMAND_PREFIX", "!")
	t.Setenv("PROMPT_TEMPLATE", "single-agent")
	t.Setenv("PROMPT_TEMPLATES_FILE", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })
	setupLogger("debug")

	if _, err := newApp(); err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	if got := log.Logger.GetLevel(); got != zerolog.WarnLevel {
		t.Errorf("logger level = %v, want %v", got, zerolog.WarnLevel)
	}
}
