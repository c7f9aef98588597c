// Package main contains the entrypoint for the assistant bot application.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/jonboulle/clockwork"

	"github.com/pkazakov/assistbot/internal/bot"
	"github.com/pkazakov/assistbot/internal/bot/handlers"
	"github.com/pkazakov/assistbot/internal/bot/tasks"
	"github.com/pkazakov/assistbot/internal/config"
	"github.com/pkazakov/assistbot/internal/currency"
	"github.com/pkazakov/assistbot/internal/database"
	"github.com/pkazakov/assistbot/internal/geocode"
	"github.com/pkazakov/assistbot/internal/logger"
	"github.com/pkazakov/assistbot/internal/places"
	"github.com/pkazakov/assistbot/internal/session"
	"github.com/pkazakov/assistbot/internal/telegram"
	"github.com/pkazakov/assistbot/internal/weather"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes all application components, starts the bot and returns an
// exit code once it stops.
func run(ctx context.Context) int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Log.Level, cfg.Log.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Log.Level, "json", cfg.Log.JSON)

	loc, err := time.LoadLocation(cfg.Location.Timezone)
	if err != nil {
		log.Error("Failed to load timezone", "timezone", cfg.Location.Timezone, "error", err)
		return 1
	}

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to open database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	clock := clockwork.NewRealClock()
	sessions := session.NewStore()
	weatherClient := weather.NewClient(cfg.Weather, log)
	currencyClient := currency.NewClient(cfg.Currency, log)
	placesClient := places.NewClient(cfg.Places, log)
	geocodeClient := geocode.NewClient(cfg.Geocode, log)

	hDeps := handlers.HandlerDeps{
		Logger:   log,
		Config:   cfg,
		Store:    store,
		Sessions: sessions,
		Weather:  weatherClient,
		Currency: currencyClient,
		Places:   placesClient,
		Geocode:  geocodeClient,
		Clock:    clock,
		Location: loc,
	}

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithDefaultHandler(handlers.NewMessageHandler(hDeps)),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	if err := telegram.SetupCommands(ctx, tg, log); err != nil {
		log.Error("Failed to publish command list", "error", err)
		return 1
	}

	if err := telegram.RegisterHandlers(tg, log, handlers.RegisterAllCommands(hDeps)); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}

	tDeps := tasks.TaskDeps{
		Logger:   log,
		Store:    store,
		Config:   cfg,
		Bot:      tg,
		Weather:  weatherClient,
		Currency: currencyClient,
		Clock:    clock,
		Location: loc,
	}

	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps), clock, loc)
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	app := bot.NewBot(log, cfg, db, store, tg, sched)

	log.Info("Starting bot...")
	runErr := app.Run(ctx)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	return 0
}
