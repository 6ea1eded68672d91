package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	"pos-analytics/bot"
	"pos-analytics/config"
	"pos-analytics/dashboard"
	"pos-analytics/db"
	"pos-analytics/logging"
	"pos-analytics/metrics"
	"pos-analytics/services"
)

const usage = `usage:
  pos-analytics                              run the report bot
  pos-analytics migrate                      apply database migrations
  pos-analytics import <dump.json>           load a JSON export
  pos-analytics grant <tg_user_id> <employee_id>  create a staff login`

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logging.Init(cfg.LogLevel)
	logger := logging.New("main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := db.Init(cfg.DB); err != nil {
		logger.Fatal().Err(err).Msg("db")
	}
	defer db.Close()

	if len(os.Args) > 1 {
		if err := runCommand(ctx, cfg, logger, os.Args[1], os.Args[2:]); err != nil {
			logger.Error().Err(err).Str("command", os.Args[1]).Msg("failed")
			db.Close()
			os.Exit(1)
		}
		return
	}

	// Set AUTO_MIGRATE=1 (or "true") to migrate on startup.
	if v := strings.TrimSpace(os.Getenv("AUTO_MIGRATE")); v == "1" || strings.EqualFold(v, "true") {
		if err := applyMigrations(ctx, false); err != nil {
			logger.Fatal().Err(err).Msg("migrate")
		}
	}

	if cfg.Telegram.Token == "" {
		logger.Fatal().Msg("TOKEN not set")
	}

	if cfg.Metrics.Addr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Addr); err != nil {
				logger.Error().Err(err).Str("addr", cfg.Metrics.Addr).Msg("metrics server")
			}
		}()
	}

	dash := dashboard.New(services.NewStore(db.Pool), dashboard.Options{
		Location: cfg.Report.Location,
		TopItems: cfg.Report.TopItems,
	})
	b, err := bot.New(cfg, dash)
	if err != nil {
		logger.Fatal().Err(err).Msg("bot")
	}

	logger.Info().Dur("refresh", cfg.Report.RefreshInterval).Msg("bot started")
	b.Start(ctx)
	logger.Info().Msg("bot stopped")
}

func runCommand(ctx context.Context, cfg *config.Config, logger zerolog.Logger, cmd string, args []string) error {
	switch cmd {
	case "migrate":
		return applyMigrations(ctx, true)
	case "import":
		if len(args) != 1 {
			return fmt.Errorf("%s", usage)
		}
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		n, err := services.ImportRecords(ctx, services.BatchWriter{Pool: db.Pool, Size: cfg.Batch.Size}, f)
		if err != nil {
			return fmt.Errorf("imported %d rows before failing: %w", n, err)
		}
		logger.Info().Int("rows", n).Str("file", args[0]).Msg("import complete")
		return nil
	case "grant":
		if len(args) != 2 {
			return fmt.Errorf("%s", usage)
		}
		tgID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("tg_user_id: %w", err)
		}
		password, err := services.ProvisionStaffCredential(ctx, tgID, args[1])
		if err != nil {
			return err
		}
		// Printed once for the operator; only the hash is stored.
		fmt.Println(password)
		return nil
	}
	return fmt.Errorf("unknown command %q\n%s", cmd, usage)
}
