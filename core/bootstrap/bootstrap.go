package bootstrap

import (
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/m3rciful/adventbot/core/config"
	coredatabase "github.com/m3rciful/adventbot/core/database"
	"github.com/m3rciful/adventbot/core/logger"
)

// Options control the bootstrap pipeline: logger, database, schema.
type Options struct {
	Config   *coreconfig.Config
	Database coredatabase.Config

	// Migrations holds the *.up.sql / *.down.sql files applied on start.
	// A nil source skips the migration step.
	Migrations fs.FS

	LoggerInit func(*coreconfig.Config) error
	Connect    func(coredatabase.Config) (*sqlx.DB, error)
	Migrate    func(coredatabase.Config, fs.FS) error
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
type Result struct {
	DB *sqlx.DB
}

// Run initializes the logger, applies migrations and opens the connection pool.
func Run(opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}
	if err := opts.Database.Validate(); err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	start := time.Now()
	if opts.Migrations != nil {
		migrate := opts.Migrate
		if migrate == nil {
			migrate = coredatabase.RunMigrations
		}
		if err := migrate(opts.Database, opts.Migrations); err != nil {
			return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
		}
	}

	connect := opts.Connect
	if connect == nil {
		connect = coredatabase.Connect
	}
	db, err := connect(opts.Database)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
	}

	logger.DB.Info("infrastructure ready",
		slog.String("event", "bootstrap"),
		slog.Bool("migrations", opts.Migrations != nil),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return &Result{DB: db}, nil
}
