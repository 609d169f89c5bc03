// Door lock node.
//
// One binary runs either half of the two-node lock: the backend drives the
// motor and buzzer and holds the passcode, the frontend reads the keypad
// and draws the display. The sim role runs both over an in-memory link.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	_ "github.com/nerrad567/gray-logic-doorlock/migrations"

	"github.com/nerrad567/gray-logic-doorlock/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-doorlock/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-doorlock/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-doorlock/internal/link"
	"github.com/nerrad567/gray-logic-doorlock/internal/sequencer"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// configEnv names the config path fallback when --config is not given.
const configEnv = "DOORLOCK_CONFIG"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// options are the parsed command line flags.
type options struct {
	configPath  string
	role        string
	showVersion bool
	migrateDown bool
}

func parseFlags(args []string, out io.Writer) (options, error) {
	var opts options
	fs := pflag.NewFlagSet("doorlock", pflag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVarP(&opts.configPath, "config", "c", os.Getenv(configEnv), "path to doorlock.yaml (env "+configEnv+")")
	fs.StringVarP(&opts.role, "node", "n", "", "node role: backend, frontend or sim (overrides node.role)")
	fs.BoolVar(&opts.showVersion, "version", false, "print version and exit")
	fs.BoolVar(&opts.migrateDown, "migrate-down", false, "roll back the latest database migration and exit")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

// run is the application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Cancelled on SIGINT/SIGTERM
//   - args: Command line arguments without the program name
//   - stdin: Keypad input for the frontend
//   - stdout: Display output for the frontend
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context, args []string, stdin *os.File, stdout io.Writer) error {
	opts, err := parseFlags(args, stdout)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if opts.showVersion {
		fmt.Fprintf(stdout, "doorlock %s (commit %s, built %s)\n", version, commit, date)
		return nil
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if opts.role != "" {
		cfg.Node.Role = opts.role
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("validating config: %w", err)
		}
	}

	log := logging.New(cfg.Logging, version).With("node", cfg.Node.ID)
	log.Info("starting door lock",
		"role", cfg.Node.Role,
		"version", version,
		"commit", commit,
		"config", opts.configPath,
	)

	if opts.migrateDown {
		return rollbackMigration(ctx, cfg, log)
	}

	env := &nodeEnv{
		cfg:    cfg,
		log:    log,
		timing: timingFrom(cfg),
		stdin:  stdin,
		stdout: stdout,
	}

	switch cfg.Node.Role {
	case config.RoleBackend:
		ch, err := openLink(ctx, cfg, true)
		if err != nil {
			return err
		}
		return env.runBackend(ctx, env.traced(ch))
	case config.RoleFrontend:
		ch, err := openLink(ctx, cfg, false)
		if err != nil {
			return err
		}
		return env.runFrontend(ctx, env.traced(ch))
	default:
		return env.runSim(ctx)
	}
}

func timingFrom(cfg *config.Config) sequencer.Timing {
	return sequencer.Timing{
		DoorOpen:  cfg.Timing.DoorOpenTicks,
		DoorHold:  cfg.Timing.DoorHoldTicks,
		DoorClose: cfg.Timing.DoorCloseTicks,
		Lockout:   cfg.Timing.LockoutTicks,
	}
}

// openLink opens the configured transport. For tcp the backend listens
// and the frontend dials.
func openLink(ctx context.Context, cfg *config.Config, listen bool) (link.Channel, error) {
	switch cfg.Link.Transport {
	case config.TransportTCP:
		if listen {
			return link.Listen(ctx, cfg.Link.Address)
		}
		return link.Dial(ctx, cfg.Link.Address)
	default:
		return link.OpenSerial(link.SerialConfig{
			Device:   cfg.Link.Device,
			BaudRate: cfg.Link.BaudRate,
		})
	}
}

// rollbackMigration reverts the most recently applied migration.
func rollbackMigration(ctx context.Context, cfg *config.Config, log *logging.Logger) error {
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close() //nolint:errcheck // Process exits next

	if err := db.MigrateDown(ctx); err != nil {
		return fmt.Errorf("rolling back migration: %w", err)
	}
	applied, pending, err := db.GetMigrationStatus(ctx)
	if err != nil {
		return fmt.Errorf("reading migration status: %w", err)
	}
	log.Info("latest migration rolled back", "path", db.Path(), "applied", len(applied), "pending", len(pending))
	return nil
}

// runSim runs both nodes in one process, each with its own tick source.
// The panel's exit (keypad EOF or Ctrl-C) closes the link, which stops the
// controller.
func (e *nodeEnv) runSim(ctx context.Context) error {
	panelEnd, ctrlEnd := link.Pipe()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return e.runBackend(gctx, e.traced(ctrlEnd))
	})
	g.Go(func() error {
		defer panelEnd.Close() //nolint:errcheck // Unblocks the controller
		return e.runFrontend(gctx, panelEnd)
	})
	return g.Wait()
}
