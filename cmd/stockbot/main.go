package main

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	// Re-applied by newApp once .env has been loaded.
	setupLogger(os.Getenv("LOG_LEVEL"))

	root := &cobra.Command{
		Use:           "stockbot",
		Short:         "Stock analysis chat bot with LLM provider fallback",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(), newAnalyzeCmd(), newStatusCmd())

	if err := root.Execute(); err != nil {
		log.Fatal().Err(err).Msg("stockbot failed")
	}
}

func setupLogger(level string) {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(parseLevel(level)).With().Timestamp().Logger()
}

// parseLevel falls back to info for empty or unknown levels.
func parseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
