// Tickbridge - MQTT bridge for tick-driven polling hosts.
//
// This is the main entry point. It runs the built-in polling host against
// the bridge adapter, and optionally exposes the adapter over HTTP and
// WebSocket, journals consumed messages to SQLite, and exports adapter
// statistics to InfluxDB.
//
// Commands:
//
//	tickbridge                 run the service
//	tickbridge token SUBJECT   print an API bearer token
//	tickbridge migrate up|down|status
//	                           manage the journal database schema
//	tickbridge version         print build information
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nerrad567/mqtt-tickbridge/internal/api"
	"github.com/nerrad567/mqtt-tickbridge/internal/auth"
	"github.com/nerrad567/mqtt-tickbridge/internal/bridge"
	"github.com/nerrad567/mqtt-tickbridge/internal/host"
	"github.com/nerrad567/mqtt-tickbridge/internal/infrastructure/config"
	"github.com/nerrad567/mqtt-tickbridge/internal/infrastructure/database"
	"github.com/nerrad567/mqtt-tickbridge/internal/infrastructure/influxdb"
	"github.com/nerrad567/mqtt-tickbridge/internal/infrastructure/logging"
	"github.com/nerrad567/mqtt-tickbridge/internal/infrastructure/mqtt"
	"github.com/nerrad567/mqtt-tickbridge/internal/journal"
	"github.com/nerrad567/mqtt-tickbridge/internal/telemetry"
	"github.com/nerrad567/mqtt-tickbridge/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// configEnvVar overrides defaultConfigPath.
const configEnvVar = "TICKBRIDGE_CONFIG"

// errNothingToRun is returned when both the host and the API are disabled.
var errNothingToRun = errors.New("neither host nor api is enabled")

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := dispatch(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// dispatch selects a subcommand. No arguments runs the service.
func dispatch(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return run(ctx)
	}

	switch args[0] {
	case "token":
		return runToken(args[1:], stdout)
	case "migrate":
		return runMigrate(ctx, args[1:], stdout)
	case "version":
		fmt.Fprintf(stdout, "tickbridge %s (commit %s, built %s)\n", version, commit, date)
		return nil
	default:
		return fmt.Errorf("unknown command %q (want token, migrate or version)", args[0])
	}
}

// runToken prints a bearer token for the subject in args[0].
func runToken(args []string, stdout io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: tickbridge token SUBJECT")
	}

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Security.JWT.Secret == "" {
		return fmt.Errorf("no JWT secret configured; set TICKBRIDGE_JWT_SECRET")
	}

	token, err := auth.GenerateToken(args[0], cfg.Security.JWT.Secret, cfg.Security.JWT.AccessTokenTTL)
	if err != nil {
		return fmt.Errorf("generating token: %w", err)
	}
	fmt.Fprintln(stdout, token)
	return nil
}

// runMigrate applies, rolls back or lists journal schema migrations.
// It works on journal.path whether or not the journal is enabled.
func runMigrate(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: tickbridge migrate up|down|status")
	}

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Journal.Path == "" {
		return fmt.Errorf("journal.path is not set")
	}

	db, err := database.Open(cfg.Journal)
	if err != nil {
		return fmt.Errorf("opening journal database: %w", err)
	}
	defer db.Close() //nolint:errcheck // Read-mostly command, close error is not actionable

	switch args[0] {
	case "up":
		applied, err := db.Migrate(ctx, migrations.FS)
		if err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		fmt.Fprintf(stdout, "applied %d migration(s)\n", applied)
	case "down":
		if err := db.MigrateDown(ctx, migrations.FS); err != nil {
			return fmt.Errorf("rolling back migration: %w", err)
		}
		fmt.Fprintln(stdout, "rolled back latest migration")
	case "status":
		applied, pending, err := db.MigrationStatus(ctx, migrations.FS)
		if err != nil {
			return fmt.Errorf("reading migration status: %w", err)
		}
		for _, r := range applied {
			fmt.Fprintf(stdout, "applied  %s  %s\n", r.Version, r.AppliedAt.Format(time.RFC3339))
		}
		for _, m := range pending {
			fmt.Fprintf(stdout, "pending  %s  %s\n", m.Version, m.Name)
		}
	default:
		return fmt.Errorf("unknown migrate action %q (want up, down or status)", args[0])
	}
	return nil
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error { //nolint:gocognit,gocyclo // linear startup sequence
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Tickbridge",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	cfg, source, err := loadConfig()
	if err != nil {
		return err
	}
	log.Info("configuration loaded", "source", source)

	if !cfg.Host.Enabled && !cfg.API.Enabled {
		return errNothingToRun
	}

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Bridge adapter over Paho clients
	factory := mqtt.NewFactory(cfg.MQTT)
	factory.SetLogger(log.With("component", "mqtt"))
	adapter := bridge.NewAdapter(clientFactory(factory))
	adapter.SetLogger(log.With("component", "bridge"))
	defer func() {
		log.Info("closing MQTT client")
		adapter.Close()
	}()
	log.Info("bridge adapter ready",
		"transport", cfg.MQTT.Transport,
		"auto_reconnect", cfg.MQTT.AutoReconnect,
	)

	// Message journal (optional)
	var (
		db            *database.DB
		msgJournal    *journal.Journal
		journalReader api.JournalReader
	)
	if cfg.Journal.Enabled {
		db, err = database.Open(cfg.Journal)
		if err != nil {
			return fmt.Errorf("opening journal database: %w", err)
		}
		defer func() {
			log.Info("closing journal database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing journal database", "error", closeErr)
			}
		}()

		applied, migrateErr := db.Migrate(ctx, migrations.FS)
		if migrateErr != nil {
			return fmt.Errorf("running migrations: %w", migrateErr)
		}
		log.Info("journal database ready", "path", db.Path(), "migrations_applied", applied)

		msgJournal = journal.New(journal.NewSQLiteRepository(db.DB), cfg.Journal.BufferSize)
		msgJournal.SetLogger(log.With("component", "journal"))
		adapter.SetObserver(msgJournal)
		journalReader = msgJournal
	} else {
		log.Info("message journal disabled")
	}

	// InfluxDB telemetry (optional)
	var reporter *telemetry.Reporter
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		reporter = telemetry.NewReporter(adapter, influxClient,
			time.Duration(cfg.InfluxDB.ReportInterval)*time.Second)
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Built-in polling host (optional)
	var runtime *host.Runtime
	var hostMetrics api.HostMetrics
	if cfg.Host.Enabled {
		program, loadErr := host.LoadProgram(cfg.Host.Program)
		if loadErr != nil {
			return fmt.Errorf("loading host program: %w", loadErr)
		}
		runtime = host.NewRuntime(adapter, program)
		runtime.SetLogger(log.With("component", "host"))
		hostMetrics = runtime
		log.Info("host program loaded",
			"path", cfg.Host.Program,
			"tick_rate", cfg.Host.TickRate,
		)
	} else {
		log.Info("built-in host disabled")
	}

	if err := healthCheck(ctx, db, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	// HTTP/WebSocket API (optional)
	if cfg.API.Enabled {
		server, newErr := api.New(api.Deps{
			Config:   cfg.API,
			WS:       cfg.WebSocket,
			Security: cfg.Security,
			Logger:   log.With("component", "api"),
			Bridge:   adapter,
			Journal:  journalReader,
			Host:     hostMetrics,
			Version:  version,
		})
		if newErr != nil {
			return fmt.Errorf("creating API server: %w", newErr)
		}
		if startErr := server.Start(gctx); startErr != nil {
			return fmt.Errorf("starting API server: %w", startErr)
		}
		g.Go(func() error {
			<-gctx.Done()
			return server.Close()
		})
	} else {
		log.Info("API disabled")
	}

	if msgJournal != nil {
		g.Go(func() error { return msgJournal.Run(gctx) })
	}
	if reporter != nil {
		g.Go(func() error { return reporter.Run(gctx) })
	}
	if runtime != nil {
		g.Go(func() error { return runtime.Run(gctx, cfg.TickInterval()) })
	}

	log.Info("initialisation complete, waiting for shutdown signal")

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("Tickbridge stopped")
	return nil
}

// clientFactory adapts the Paho factory to the adapter's handle factory.
// A failed client is returned as an untyped nil handle.
func clientFactory(f *mqtt.Factory) bridge.ClientFactory {
	return func(hostname string, port int, clientID string) (bridge.ClientHandle, error) {
		client, err := f.NewClient(hostname, port, clientID)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

// loadConfig loads the configuration file. When TICKBRIDGE_CONFIG is unset
// and the default file does not exist, built-in defaults are used.
// The second result names where the configuration came from.
func loadConfig() (*config.Config, string, error) {
	path, explicit := getConfigPath()

	cfg, err := config.Load(path)
	if err == nil {
		return cfg, path, nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		cfg = config.Default()
		if validateErr := cfg.Validate(); validateErr != nil {
			return nil, "", fmt.Errorf("validating default config: %w", validateErr)
		}
		return cfg, "defaults", nil
	}
	return nil, "", fmt.Errorf("loading config: %w", err)
}

// getConfigPath returns the configuration file path and whether it was set
// explicitly through TICKBRIDGE_CONFIG.
func getConfigPath() (string, bool) {
	if path := os.Getenv(configEnvVar); path != "" {
		return path, true
	}
	return defaultConfigPath, false
}

// healthCheck verifies the optional backing stores are reachable.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Journal database (may be nil if disabled)
//   - influxClient: InfluxDB client (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, influxClient *influxdb.Client) error {
	if db != nil {
		if err := db.HealthCheck(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	// The MQTT broker is not checked: the host program decides when and
	// where to connect.
	return nil
}
