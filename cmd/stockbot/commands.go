package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pookan/stockbot/internal/format"
	"github.com/pookan/stockbot/internal/metrics"
	"github.com/pookan/stockbot/internal/transport/discord"
	"github.com/pookan/stockbot/internal/transport/telegram"
	"github.com/pookan/stockbot/models"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Serve chat commands on every transport with a token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, app)
		},
	}
}

func serve(ctx context.Context, app *App) error {
	g, ctx := errgroup.WithContext(ctx)
	transports := 0

	if token := app.Config.DiscordToken; token != "" {
		bot, err := discord.New(token, app.Config.CommandPrefix, app.Dispatcher)
		if err != nil {
			return err
		}
		g.Go(func() error { return bot.Run(ctx) })
		transports++
	}

	if token := app.Config.TelegramToken; token != "" {
		bot, err := telegram.New(token, app.Config.CommandPrefix, app.Dispatcher)
		if err != nil {
			return err
		}
		g.Go(func() error { return bot.Run(ctx) })
		transports++
	}

	if transports == 0 {
		return errors.New("no chat transport configured: set DISCORD_TOKEN or TELEGRAM_BOT_TOKEN")
	}

	if addr := app.Config.MetricsAddr; addr != "" {
		srv := metrics.NewServer(addr, app.Metrics)
		g.Go(func() error { return srv.Run(ctx) })
	}

	log.Info().Int("transports", transports).Msg("stockbot is running")
	err := g.Wait()
	log.Info().Msg("stockbot stopped")
	return err
}

func newAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "analyze <ticker> [question...]",
		Short:   "Run one analysis and print the reply",
		Example: "  stockbot analyze AAPL\n  stockbot analyze TSLA should I buy?",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return console(cmd, "analyze "+strings.Join(args, " "))
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the configured LLM providers and data source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return console(cmd, "status")
		},
	}
}

// console sends a single command through the dispatcher and prints the
// reply chunks to stdout.
func console(cmd *cobra.Command, text string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reply, _ := app.Dispatcher.Handle(ctx, models.Command{
		Text:   app.Config.CommandPrefix + text,
		UserID: "console",
		Source: "console",
	})

	out := cmd.OutOrStdout()
	for chunk := range format.Split(reply, format.TelegramLimit) {
		if _, err := fmt.Fprint(out, chunk); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintln(out)
	return err
}
