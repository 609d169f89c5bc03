package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-doorlock/internal/credential"
	"github.com/nerrad567/gray-logic-doorlock/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-doorlock/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-doorlock/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-doorlock/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-doorlock/internal/passcode"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func openStdin(t *testing.T, keys string) *os.File {
	t.Helper()
	f, err := os.Open(writeFile(t, "keys", keys))
	if err != nil {
		t.Fatalf("opening keys: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func TestRunVersion(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), []string{"--version"}, nil, &out); err != nil {
		t.Fatalf("run(--version) error = %v", err)
	}
	if !strings.HasPrefix(out.String(), "doorlock dev") {
		t.Errorf("version output = %q", out.String())
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	badRole := writeFile(t, "role.yaml", "node:\n  role: gateway\n")

	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"--bogus"}},
		{"missing config", []string{"--config", filepath.Join(t.TempDir(), "nope.yaml")}},
		{"invalid role in file", []string{"-c", badRole}},
		{"invalid role flag", []string{"--node", "gateway"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			if err := run(context.Background(), tt.args, nil, &out); err == nil {
				t.Error("run() expected error")
			}
		})
	}
}

func TestRunSim(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, "doorlock.yaml", `
node:
  id: sim-test
  role: sim
timing:
  tick_interval: 1ms
  poll_interval: 1ms
  door_open_ticks: 3
  door_hold_ticks: 2
  door_close_ticks: 3
  lockout_ticks: 5
  message_ticks: 2
hardware:
  ansi: false
database:
  path: `+filepath.Join(dir, "doorlock.db")+`
logging:
  level: error
`)
	stdin := openStdin(t, "12345\r12345\r+12345\r")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var out bytes.Buffer
	if err := run(ctx, []string{"--config", cfg}, stdin, &out); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if ctx.Err() != nil {
		t.Fatal("sim did not stop when the keypad ran out")
	}

	screens := out.String()
	for _, want := range []string{"Password Match", "Door is opening...", "Door is locking.."} {
		if !strings.Contains(screens, want) {
			t.Errorf("display never showed %q\n%s", want, screens)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "doorlock.db")); err != nil {
		t.Errorf("database not created: %v", err)
	}
}

func TestRunSimMemoryStoreNodeFlag(t *testing.T) {
	cfg := writeFile(t, "doorlock.yaml", `
node:
  role: backend
timing:
  tick_interval: 1ms
  message_ticks: 1
credential:
  store: memory
logging:
  level: error
`)
	stdin := openStdin(t, "11111\r22222\r")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var out bytes.Buffer
	if err := run(ctx, []string{"-c", cfg, "-n", "sim"}, stdin, &out); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.Contains(out.String(), "Password Un-match") {
		t.Errorf("mismatched setup not shown:\n%s", out.String())
	}
}

func testEnv(t *testing.T, cfg *config.Config) (*nodeEnv, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	log := logging.NewWithWriter(&logs, config.LoggingConfig{Level: "info", Format: "json"}, "test")
	return &nodeEnv{cfg: cfg, log: log, timing: timingFrom(cfg)}, &logs
}

func TestStartClock_IndependentPerNode(t *testing.T) {
	cfg := config.Default()
	cfg.Timing.TickInterval = time.Millisecond
	env, _ := testEnv(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctrlClock, stopCtrl := env.startClock(ctx)
	panelClock, stopPanel := env.startClock(ctx)
	if ctrlClock == panelClock {
		t.Fatal("nodes share a tick source")
	}

	deadline := time.Now().Add(2 * time.Second)
	for (ctrlClock.Now() == 0 || panelClock.Now() == 0) && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if ctrlClock.Now() == 0 || panelClock.Now() == 0 {
		t.Fatal("node clocks did not advance")
	}

	stopCtrl()
	stopPanel()
	before := panelClock.Now()
	ctrlClock.Tick()
	if panelClock.Now() != before {
		t.Error("ticking one node's clock moved the other")
	}
}

func TestLoadCredential(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		stored  string
		wantLog string
	}{
		{"empty store", "", "no stored credential"},
		{"stored record", "24680", "stored credential loaded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, logs := testEnv(t, config.Default())
			store := credential.NewMemoryStore()
			if tt.stored != "" {
				if err := store.Save(ctx, passcode.MustParse(tt.stored)); err != nil {
					t.Fatalf("Save() error = %v", err)
				}
			}
			creds := credential.New(store)

			if err := loadCredential(ctx, creds, env.log); err != nil {
				t.Fatalf("loadCredential() error = %v", err)
			}
			if creds.Provisioned() != (tt.stored != "") {
				t.Errorf("Provisioned() = %v", creds.Provisioned())
			}
			if !strings.Contains(logs.String(), tt.wantLog) {
				t.Errorf("log = %s, want %q", logs.String(), tt.wantLog)
			}
		})
	}
}

func openDB(t *testing.T, path string) *database.DB {
	t.Helper()
	db, err := database.Open(database.Config{Path: path, WALMode: true, BusyTimeout: 5})
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	return db
}

func TestHealthCheck(t *testing.T) {
	ctx := context.Background()

	if err := healthCheck(ctx, nil, nil, nil); err != nil {
		t.Errorf("healthCheck() with nothing configured error = %v", err)
	}

	db := openDB(t, filepath.Join(t.TempDir(), "health.db"))
	if err := healthCheck(ctx, db, nil, nil); err != nil {
		t.Errorf("healthCheck() error = %v", err)
	}

	if err := healthCheck(ctx, db, &mqtt.Client{}, nil); !errors.Is(err, mqtt.ErrNotConnected) {
		t.Errorf("healthCheck() with disconnected MQTT error = %v, want ErrNotConnected", err)
	}

	_ = db.Close()
	if err := healthCheck(ctx, db, nil, nil); err == nil || !strings.HasPrefix(err.Error(), "database:") {
		t.Errorf("healthCheck() on closed database error = %v", err)
	}
}

func TestRunMigrateDown(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "doorlock.db")

	db := openDB(t, dbPath)
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	applied, _, err := db.GetMigrationStatus(ctx)
	if err != nil {
		t.Fatalf("GetMigrationStatus() error = %v", err)
	}
	_ = db.Close()

	cfg := writeFile(t, "doorlock.yaml", "database:\n  path: "+dbPath+"\nlogging:\n  level: error\n")
	var out bytes.Buffer
	if err := run(ctx, []string{"-c", cfg, "--migrate-down"}, nil, &out); err != nil {
		t.Fatalf("run(--migrate-down) error = %v", err)
	}

	db = openDB(t, dbPath)
	defer db.Close() //nolint:errcheck // Test cleanup
	after, pending, err := db.GetMigrationStatus(ctx)
	if err != nil {
		t.Fatalf("GetMigrationStatus() error = %v", err)
	}
	if len(after) != len(applied)-1 || len(pending) != 1 {
		t.Errorf("after rollback applied = %d pending = %d, want %d and 1", len(after), len(pending), len(applied)-1)
	}
}
