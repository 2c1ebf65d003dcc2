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

	"github.com/nerrad567/mqtt-tickbridge/internal/auth"
	"github.com/nerrad567/mqtt-tickbridge/internal/infrastructure/config"
	"github.com/nerrad567/mqtt-tickbridge/internal/infrastructure/mqtt"
)

const testSecret = "test-secret-key-at-least-32-characters-long"

// writeConfig writes a config file and points TICKBRIDGE_CONFIG at it.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	t.Setenv(configEnvVar, path)
	return dir
}

// writeProgram writes a host program into dir and returns its path.
func writeProgram(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "program.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test program: %v", err)
	}
	return path
}

// TestRun_InvalidConfig verifies run fails with an explicit missing config path.
func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv(configEnvVar, "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestRun_NothingEnabled verifies run refuses a config with no host and no API.
func TestRun_NothingEnabled(t *testing.T) {
	writeConfig(t, `
host:
  enabled: false
api:
  enabled: false
logging:
  level: error
`)

	err := run(context.Background())
	if !errors.Is(err, errNothingToRun) {
		t.Fatalf("run() error = %v, want errNothingToRun", err)
	}
}

// TestRun_MissingProgram verifies run fails when the host program is absent.
func TestRun_MissingProgram(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, `
host:
  enabled: true
  program: "`+filepath.Join(dir, "missing.yaml")+`"
logging:
  level: error
`)

	err := run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "host program") {
		t.Fatalf("run() error = %v, want host program failure", err)
	}
}

// TestRun_ShutdownOnCancel runs the host and journal until the context ends.
func TestRun_ShutdownOnCancel(t *testing.T) {
	dir := t.TempDir()
	program := writeProgram(t, dir, `
on_start:
  - op: log
    text: started
`)
	writeConfig(t, `
host:
  enabled: true
  tick_rate: 100
  program: "`+program+`"
journal:
  enabled: true
  path: "`+filepath.Join(dir, "journal.db")+`"
logging:
  level: error
`)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run() error = %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("run() did not return after context cancellation")
	}

	if _, err := os.Stat(filepath.Join(dir, "journal.db")); err != nil {
		t.Errorf("journal database not created: %v", err)
	}
}

// TestLoadConfig_DefaultsWhenAbsent verifies the fallback to built-in defaults.
func TestLoadConfig_DefaultsWhenAbsent(t *testing.T) {
	t.Setenv(configEnvVar, "")
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd() error = %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("Chdir() error = %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, source, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if source != "defaults" {
		t.Errorf("source = %q, want defaults", source)
	}
	if cfg.Host.TickRate != 30 {
		t.Errorf("TickRate = %d, want 30", cfg.Host.TickRate)
	}
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv(configEnvVar, "")
	if path, explicit := getConfigPath(); path != defaultConfigPath || explicit {
		t.Errorf("getConfigPath() = %q, %v; want default, false", path, explicit)
	}

	t.Setenv(configEnvVar, "/etc/tickbridge.yaml")
	if path, explicit := getConfigPath(); path != "/etc/tickbridge.yaml" || !explicit {
		t.Errorf("getConfigPath() = %q, %v; want env path, true", path, explicit)
	}
}

func TestDispatch_Version(t *testing.T) {
	var out bytes.Buffer
	if err := dispatch(context.Background(), []string{"version"}, &out); err != nil {
		t.Fatalf("dispatch(version) error = %v", err)
	}
	if !strings.HasPrefix(out.String(), "tickbridge dev") {
		t.Errorf("output = %q", out.String())
	}
}

func TestDispatch_UnknownCommand(t *testing.T) {
	if err := dispatch(context.Background(), []string{"frobnicate"}, &bytes.Buffer{}); err == nil {
		t.Error("dispatch(frobnicate) should fail")
	}
}

func TestRunToken(t *testing.T) {
	writeConfig(t, "logging:\n  level: error\n")
	t.Setenv("TICKBRIDGE_JWT_SECRET", testSecret)

	var out bytes.Buffer
	if err := dispatch(context.Background(), []string{"token", "dashboard"}, &out); err != nil {
		t.Fatalf("dispatch(token) error = %v", err)
	}

	claims, err := auth.ParseToken(strings.TrimSpace(out.String()), testSecret)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.Subject != "dashboard" {
		t.Errorf("Subject = %q, want dashboard", claims.Subject)
	}
}

func TestRunToken_Errors(t *testing.T) {
	writeConfig(t, "logging:\n  level: error\n")
	t.Setenv("TICKBRIDGE_JWT_SECRET", "")

	if err := runToken(nil, &bytes.Buffer{}); err == nil {
		t.Error("runToken() without subject should fail")
	}
	if err := runToken([]string{"dashboard"}, &bytes.Buffer{}); err == nil {
		t.Error("runToken() without a secret should fail")
	}
}

func TestRunMigrate(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "journal.db")
	writeConfig(t, "journal:\n  path: \""+dbPath+"\"\nlogging:\n  level: error\n")
	ctx := context.Background()

	migrate := func(action string) string {
		t.Helper()
		var out bytes.Buffer
		if err := dispatch(ctx, []string{"migrate", action}, &out); err != nil {
			t.Fatalf("migrate %s error = %v", action, err)
		}
		return out.String()
	}

	if out := migrate("status"); !strings.Contains(out, "pending") {
		t.Errorf("status before up = %q, want a pending migration", out)
	}
	if out := migrate("up"); !strings.Contains(out, "applied 1") {
		t.Errorf("up = %q, want 1 applied", out)
	}
	if out := migrate("status"); !strings.HasPrefix(out, "applied") || strings.Contains(out, "pending") {
		t.Errorf("status after up = %q", out)
	}
	migrate("down")
	if out := migrate("status"); !strings.Contains(out, "pending") {
		t.Errorf("status after down = %q, want the migration pending again", out)
	}
}

func TestRunMigrate_Errors(t *testing.T) {
	writeConfig(t, "journal:\n  path: \""+filepath.Join(t.TempDir(), "j.db")+"\"\n")

	if err := runMigrate(context.Background(), nil, &bytes.Buffer{}); err == nil {
		t.Error("runMigrate() without an action should fail")
	}
	if err := runMigrate(context.Background(), []string{"sideways"}, &bytes.Buffer{}); err == nil {
		t.Error("runMigrate() with an unknown action should fail")
	}
}

func TestClientFactory(t *testing.T) {
	factory := clientFactory(mqtt.NewFactory(config.MQTTConfig{Transport: "ws", Path: "/mqtt"}))

	handle, err := factory("", 0, "x")
	if err == nil {
		t.Error("factory with empty host should fail")
	}
	if handle != nil {
		t.Errorf("failed factory handle = %#v, want untyped nil", handle)
	}

	handle, err = factory("localhost", 8080, "x")
	if err != nil {
		t.Fatalf("factory() error = %v", err)
	}
	client, ok := handle.(*mqtt.Client)
	if !ok {
		t.Fatalf("handle type = %T, want *mqtt.Client", handle)
	}
	if client.BrokerURL() != "ws://localhost:8080/mqtt" {
		t.Errorf("BrokerURL() = %q", client.BrokerURL())
	}
	client.Disconnect()
}
