package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flashdeck/internal/config"
	"flashdeck/internal/handler"
	"flashdeck/internal/repository"
	"flashdeck/internal/repository/memory"
	"flashdeck/internal/repository/postgres"
	"flashdeck/internal/repository/sqlite"
	"flashdeck/internal/scheduler"
	"flashdeck/internal/service"
	"flashdeck/internal/sheet"

	"github.com/golang-migrate/migrate/v4"
	postgresdb "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

func main() {
	importPath := pflag.String("import", "", "import a deck from an .xlsx or .csv file and exit")
	importName := pflag.String("name", "", "name of the imported deck (default: file name)")
	exportPath := pflag.String("export", "", "export all decks to an .xlsx file and exit")
	pflag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := newLogger(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Flashdeck Bot",
		zap.String("env", cfg.Env),
		zap.String("store", cfg.StoreDriver),
	)

	store, closeStore, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open store", zap.Error(err))
	}
	defer closeStore()

	logger.Info("Store ready")

	ctx := context.Background()
	loc := cfg.Location()
	clock := func() time.Time { return time.Now().In(loc) }

	// Initialize services
	deckService := service.NewDeckService(store, logger)
	knownService := service.NewKnownService(store, logger)
	streakService := service.NewStreakService(store, logger, clock)
	statsService := service.NewStatsService(store, streakService, logger)
	resetService := service.NewResetService(store, deckService, logger)

	decks := deckService.LoadAll(ctx)
	logger.Info("Decks loaded", zap.Int("decks", len(decks)))

	switch {
	case *importPath != "":
		if err := importDeck(ctx, deckService, *importPath, *importName, logger); err != nil {
			logger.Fatal("Import failed", zap.Error(err))
		}
		return
	case *exportPath != "":
		if err := sheet.ExportDecks(*exportPath, deckService.Decks()); err != nil {
			logger.Fatal("Export failed", zap.Error(err))
		}
		logger.Info("Decks exported", zap.String("path", *exportPath), zap.Int("decks", len(decks)))
		return
	}

	if err := cfg.ValidateBot(); err != nil {
		logger.Fatal("Invalid bot configuration", zap.Error(err))
	}

	// Initialize Telegram bot
	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.BotToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c tele.Context) {
			logger.Error("Update failed", zap.Error(err))
		},
	})
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	logger.Info("Telegram bot initialized")

	// Initialize handler
	h := handler.NewHandler(bot, handler.Services{
		Decks:   deckService,
		Known:   knownService,
		Streaks: streakService,
		Stats:   statsService,
		Reset:   resetService,
	}, cfg.QuizDuration(), clock, logger)
	h.RegisterHandlers()

	logger.Info("Handlers registered")

	// Start streak reminder
	var sched *scheduler.Scheduler
	if cfg.Reminder.ChatID != 0 {
		sched = scheduler.New(loc, streakService, h, cfg.Reminder.ChatID, cfg.Reminder.At, logger)
		if err := sched.Start(); err != nil {
			logger.Fatal("Failed to start scheduler", zap.Error(err))
		}
	}

	// Start bot in background
	go func() {
		logger.Info("Bot started successfully")
		bot.Start()
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan

	logger.Info("Shutdown signal received, stopping bot...")

	// Graceful shutdown
	bot.Stop()
	if sched != nil {
		sched.Stop()
	}

	logger.Info("Bot stopped gracefully")
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "dev" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// openStore connects the store selected by STORE_DRIVER. The returned func
// releases it.
func openStore(cfg *config.Config, logger *zap.Logger) (repository.Store, func(), error) {
	switch cfg.StoreDriver {
	case "postgres":
		// Connect to database with retries
		db, err := connectDatabase(cfg.DSN(), logger)
		if err != nil {
			return nil, nil, err
		}

		// Run migrations
		if err := runMigrations(db, logger); err != nil {
			db.Close()
			return nil, nil, err
		}
		return postgres.NewStore(db), func() { db.Close() }, nil

	case "sqlite":
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil

	default:
		logger.Warn("Using in-memory store, data is lost on exit")
		return memory.New(), func() {}, nil
	}
}

func importDeck(ctx context.Context, decks *service.DeckService, path, name string, logger *zap.Logger) error {
	cfg := sheet.DefaultImportConfig()
	cfg.FilePath = path
	cfg.DeckName = name

	result, err := sheet.ReadDeck(cfg)
	if err != nil {
		return err
	}
	for _, msg := range result.Errors {
		logger.Warn("Row skipped", zap.String("reason", msg))
	}

	deck, err := decks.ImportDeck(ctx, result.Deck)
	if err != nil {
		return fmt.Errorf("failed to save deck: %w", err)
	}

	logger.Info("Deck imported",
		zap.String("deck_id", deck.ID),
		zap.String("name", deck.Name),
		zap.Int("cards", len(deck.Cards)),
		zap.Int("skipped", result.Skipped),
	)
	return nil
}

// connectDatabase connects to PostgreSQL with retries
func connectDatabase(dsn string, logger *zap.Logger) (*sql.DB, error) {
	var db *sql.DB
	var err error

	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = sql.Open("postgres", dsn)
		if err != nil {
			logger.Warn("Failed to open database connection",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			time.Sleep(retryDelay)
			continue
		}

		// Test connection
		if err = db.Ping(); err != nil {
			logger.Warn("Failed to ping database",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			db.Close()
			time.Sleep(retryDelay)
			continue
		}

		db.SetMaxOpenConns(5)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(5 * time.Minute)

		return db, nil
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
}

// runMigrations creates the kv_store table
func runMigrations(db *sql.DB, logger *zap.Logger) error {
	driver, err := postgresdb.WithInstance(db, &postgresdb.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Info("No new migrations to apply")
	case err != nil:
		return fmt.Errorf("failed to run migrations: %w", err)
	default:
		logger.Info("Migrations applied successfully")
	}

	return nil
}
