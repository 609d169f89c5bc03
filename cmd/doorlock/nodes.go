package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/nerrad567/gray-logic-doorlock/internal/audit"
	"github.com/nerrad567/gray-logic-doorlock/internal/controller"
	"github.com/nerrad567/gray-logic-doorlock/internal/credential"
	"github.com/nerrad567/gray-logic-doorlock/internal/hal"
	"github.com/nerrad567/gray-logic-doorlock/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-doorlock/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-doorlock/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-doorlock/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-doorlock/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-doorlock/internal/link"
	"github.com/nerrad567/gray-logic-doorlock/internal/panel"
	"github.com/nerrad567/gray-logic-doorlock/internal/sequencer"
	"github.com/nerrad567/gray-logic-doorlock/internal/telemetry"
	"github.com/nerrad567/gray-logic-doorlock/internal/tick"
)

// nodeEnv carries what both node roles share.
type nodeEnv struct {
	cfg    *config.Config
	log    *logging.Logger
	timing sequencer.Timing
	stdin  *os.File
	stdout io.Writer
}

// startClock gives a node its own free-running tick source. The returned
// func stops the timer.
func (e *nodeEnv) startClock(ctx context.Context) (*tick.Source, func()) {
	src := &tick.Source{}
	timer := tick.NewTimer(src, e.cfg.Timing.TickInterval)
	timer.Start(ctx)
	return src, timer.Stop
}

func (e *nodeEnv) traced(ch link.Channel) link.Channel {
	if !e.cfg.Link.Trace {
		return ch
	}
	return link.Trace(ch, e.log.With("component", "link"))
}

// closeOnDone closes ch when ctx ends so a blocked Receive returns.
func closeOnDone(ctx context.Context, ch link.Channel) (stop func() bool) {
	return context.AfterFunc(ctx, func() { ch.Close() }) //nolint:errcheck // Shutdown path
}

// runBackend wires storage, actuators and telemetry into a controller and
// runs it until the link closes or ctx ends.
func (e *nodeEnv) runBackend(ctx context.Context, ch link.Channel) error {
	defer ch.Close() //nolint:errcheck // Shutdown path
	defer closeOnDone(ctx, ch)()

	clock, stopClock := e.startClock(ctx)
	defer stopClock()

	var observers controller.Observers

	store, db, err := e.openStore(ctx)
	if err != nil {
		return err
	}
	if db != nil {
		defer func() {
			e.log.Info("closing database")
			if closeErr := db.Close(); closeErr != nil {
				e.log.Error("error closing database", "error", closeErr)
			}
		}()
		observers = append(observers, audit.NewRecorder(audit.NewSQLiteRepository(db.DB), e.cfg.Node.ID, e.log))
	}

	mqttClient := e.connectMQTT()
	if mqttClient != nil {
		defer func() {
			e.log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				e.log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		observers = append(observers, telemetry.NewMQTTObserver(mqttClient, e.cfg.Node.ID, e.log.With("component", "mqtt")))
	}

	influxClient := e.connectInflux()
	if influxClient != nil {
		defer func() {
			e.log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				e.log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		observers = append(observers, telemetry.NewInfluxObserver(influxClient))
	}

	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	e.log.Info("all health checks passed")

	creds := credential.New(store)
	if err := loadCredential(ctx, creds, e.log); err != nil {
		e.log.Warn("stored credential unreadable", "error", err)
	}

	pins := hal.NewSimPins()
	pins.SetLogger(e.log.With("component", "gpio"))
	motor, err := hal.NewDCMotor(pins, e.cfg.Hardware.MotorIN1, e.cfg.Hardware.MotorIN2)
	if err != nil {
		return fmt.Errorf("configuring motor: %w", err)
	}
	buzzer, err := hal.NewBuzzer(pins, e.cfg.Hardware.BuzzerPin)
	if err != nil {
		return fmt.Errorf("configuring buzzer: %w", err)
	}

	ctrl, err := controller.New(controller.Options{
		Channel:      ch,
		Credentials:  creds,
		Motor:        motor,
		Alarm:        buzzer,
		Clock:        clock,
		Timing:       e.timing,
		MaxAttempts:  e.cfg.Security.MaxAttempts,
		PollInterval: e.cfg.Timing.PollInterval,
		Observer:     observers,
		Logger:       e.log.With("component", "controller"),
	})
	if err != nil {
		return fmt.Errorf("creating controller: %w", err)
	}

	e.log.Info("controller ready", "store", e.cfg.Credential.Store, "max_attempts", e.cfg.Security.MaxAttempts)
	return ctrl.Run(ctx)
}

// openStore returns the credential store. For sqlite it also returns the
// open database, which the caller closes.
func (e *nodeEnv) openStore(ctx context.Context) (credential.Store, *database.DB, error) {
	if e.cfg.Credential.Store == config.StoreMemory {
		return credential.NewMemoryStore(), nil, nil
	}

	db, err := database.Open(database.Config{
		Path:        e.cfg.Database.Path,
		WALMode:     e.cfg.Database.WALMode,
		BusyTimeout: e.cfg.Database.BusyTimeout,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close() //nolint:errcheck // Error path
		return nil, nil, fmt.Errorf("running migrations: %w", err)
	}
	e.log.Info("database ready", "path", db.Path())

	return credential.NewSQLiteStore(db.DB, e.cfg.Credential.Address), db, nil
}

// loadCredential copies a stored passcode into the mirror. Setup still runs
// on boot either way.
func loadCredential(ctx context.Context, creds *credential.Credentials, log *logging.Logger) error {
	if err := creds.Load(ctx); err != nil {
		return err
	}
	if creds.Provisioned() {
		log.Info("stored credential loaded")
	} else {
		log.Info("no stored credential")
	}
	return nil
}

// healthCheck verifies the infrastructure the backend started with.
// MQTT and InfluxDB are optional and skipped when nil.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: SQLite database, nil for the memory store
//   - mqttClient: MQTT connection, may be nil
//   - influxClient: InfluxDB connection, may be nil
//
// Returns:
//   - error: the first failing component, wrapped with its name
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if db != nil {
		if err := db.HealthCheck(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}
	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}
	return nil
}

// connectMQTT returns nil when MQTT is disabled or unreachable; the lock
// works without it.
func (e *nodeEnv) connectMQTT() *mqtt.Client {
	client, err := mqtt.Connect(e.cfg.MQTT, e.cfg.Node.ID)
	if errors.Is(err, mqtt.ErrDisabled) {
		return nil
	}
	if err != nil {
		e.log.Warn("MQTT unavailable, events will not be published", "error", err)
		return nil
	}
	client.SetLogger(e.log.With("component", "mqtt"))
	e.log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", e.cfg.MQTT.Broker.Host, e.cfg.MQTT.Broker.Port),
		"client_id", e.cfg.MQTT.Broker.ClientID,
	)
	return client
}

// connectInflux returns nil when InfluxDB is disabled or unreachable.
func (e *nodeEnv) connectInflux() *influxdb.Client {
	client, err := influxdb.Connect(e.cfg.InfluxDB, e.cfg.Node.ID)
	if errors.Is(err, influxdb.ErrDisabled) {
		return nil
	}
	if err != nil {
		e.log.Warn("InfluxDB unavailable, metrics will not be written", "error", err)
		return nil
	}
	client.SetOnError(func(err error) {
		e.log.Error("InfluxDB write error", "error", err)
	})
	e.log.Info("InfluxDB connected", "url", e.cfg.InfluxDB.URL, "bucket", e.cfg.InfluxDB.Bucket)
	return client
}

// runFrontend drives the keypad and display until the keypad is
// interrupted, the link closes or ctx ends.
func (e *nodeEnv) runFrontend(ctx context.Context, ch link.Channel) error {
	defer ch.Close() //nolint:errcheck // Shutdown path
	defer closeOnDone(ctx, ch)()

	clock, stopClock := e.startClock(ctx)
	defer stopClock()

	keypad, err := hal.NewTerminalKeypad(e.stdin)
	if err != nil {
		return fmt.Errorf("opening keypad: %w", err)
	}
	defer func() {
		if closeErr := keypad.Close(); closeErr != nil {
			e.log.Error("error restoring terminal", "error", closeErr)
		}
	}()

	p, err := panel.New(panel.Options{
		Channel:      ch,
		Keypad:       keypad,
		Display:      hal.NewTextDisplay(e.stdout, e.cfg.Hardware.ANSI),
		Clock:        clock,
		Timing:       e.timing,
		MessageTicks: e.cfg.Timing.MessageTicks,
		PollInterval: e.cfg.Timing.PollInterval,
		Logger:       e.log.With("component", "panel"),
	})
	if err != nil {
		return fmt.Errorf("creating panel: %w", err)
	}

	// ReadKey on stdin cannot be interrupted. On shutdown the Run goroutine
	// is abandoned in ReadKey: the terminal is restored under it and the
	// process exits once run returns.
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		e.log.Info("panel stopped", "reason", ctx.Err())
		return nil
	}
}
