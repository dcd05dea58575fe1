package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadBridgeDefaultsAppliesOverridesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bridge.json")
	partial := `{"max_stp_instances": 64, "log_level": "debug"}`
	if err := os.WriteFile(path, []byte(partial), 0644); err != nil {
		t.Fatal(err)
	}

	bd, err := LoadBridgeDefaults(path)
	if err != nil {
		t.Fatal(err)
	}
	if bd.MaxStpInstances != 64 {
		t.Fatalf("got %d, want 64", bd.MaxStpInstances)
	}
	if bd.LogLevel != "debug" {
		t.Fatalf("got %q, want debug", bd.LogLevel)
	}
	if bd.IPCSocketPath != "/var/run/stpipc.sock" {
		t.Fatalf("expected default ipc socket path to survive partial override, got %q", bd.IPCSocketPath)
	}
}

func TestRootProtectDurationFallsBackOnMalformedValue(t *testing.T) {
	bd := DefaultBridgeDefaults()
	bd.RootProtectTimeout = "not-a-duration"
	if got := bd.RootProtectDuration(); got.Seconds() != 30 {
		t.Fatalf("got %v, want 30s fallback", got)
	}
}

func TestSaveBridgeDefaultsRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bridge.json")
	bd := DefaultBridgeDefaults()
	bd.StpCtlAuth = StpCtlAuthConfig{Enabled: true, Secret: "s3cret"}

	if err := SaveBridgeDefaults(path, bd); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadBridgeDefaults(path)
	if err != nil {
		t.Fatal(err)
	}
	if !loaded.StpCtlAuth.Enabled || loaded.StpCtlAuth.Secret != "s3cret" {
		t.Fatalf("got %+v", loaded.StpCtlAuth)
	}
}

func TestWatchReceivesSetNotifications(t *testing.T) {
	c := NewConfig(filepath.Join(t.TempDir(), "unused.json"))
	ch, err := c.Watch("log_level")
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set("log_level", "warn"); err != nil {
		t.Fatal(err)
	}
	select {
	case v := <-ch:
		if v != "warn" {
			t.Fatalf("got %v, want warn", v)
		}
	default:
		t.Fatal("expected a notification on the watch channel")
	}
}

func TestReloadOnlyReloadsAfterMtimeAdvances(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "raw.json")
	write := func(v int) {
		b, _ := json.Marshal(map[string]int{"x": v})
		if err := os.WriteFile(path, b, 0644); err != nil {
			t.Fatal(err)
		}
	}
	write(1)
	c := NewConfig(path)
	if err := c.Load(); err != nil {
		t.Fatal(err)
	}

	updated, err := c.Reload()
	if err != nil {
		t.Fatal(err)
	}
	if updated {
		t.Fatal("expected no reload when the file hasn't changed")
	}
}
