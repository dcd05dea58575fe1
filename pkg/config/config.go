package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Config is the generic key/value store backing the bootstrap file: a
// JSON document loaded once at startup, watchable per key, and reloaded
// by Reload when the file's mtime advances.
type Config struct {
	mu       sync.RWMutex
	filePath string
	data     map[string]interface{}
	watchers map[string][]chan interface{}
	lastMod  time.Time
}

// BridgeDefaults is the bootstrap document pvstd reads at startup. It
// seeds daemon-wide defaults only; per-VLAN/per-port STP configuration
// arrives later over the IPC socket, never here.
type BridgeDefaults struct {
	MaxStpInstances int    `json:"max_stp_instances"`
	BaseMAC         string `json:"base_mac,omitempty"`
	ProtoMode       string `json:"proto_mode"` // "none" or "pvst"

	IPCSocketPath string `json:"ipc_socket_path"`
	CtlSocketPath string `json:"ctl_socket_path"`

	RootProtectTimeout string `json:"root_protect_timeout"` // e.g. "30s"

	LogLevel string `json:"log_level"` // logrus level name

	DiagStorePath    string `json:"diag_store_path,omitempty"`
	CaptureRingSize  int    `json:"capture_ring_size"`
	CaptureDumpDir   string `json:"capture_dump_dir,omitempty"`

	Protection ProtectionDefaults `json:"protection"`

	StpCtlAuth StpCtlAuthConfig `json:"stpctl_auth"`
}

// ProtectionDefaults seeds the guard overlays applied to newly learned
// ports before any explicit PortConfig arrives over IPC.
type ProtectionDefaults struct {
	RootGuard          bool `json:"root_guard"`
	BPDUGuard          bool `json:"bpdu_guard"`
	BPDUGuardDoDisable bool `json:"bpdu_guard_do_disable"`
	PortFast           bool `json:"port_fast"`
	UplinkFast         bool `json:"uplink_fast"`
}

// StpCtlAuthConfig gates the optional bearer-token check on mutating
// StpCtl commands (clear-*, set-dbg, set-log-level). Read-only dumps are
// never gated.
type StpCtlAuthConfig struct {
	Enabled bool   `json:"enabled"`
	Secret  string `json:"secret,omitempty"`
}

// NewConfig creates a new configuration instance.
func NewConfig(filePath string) *Config {
	return &Config{
		filePath: filePath,
		data:     make(map[string]interface{}),
		watchers: make(map[string][]chan interface{}),
	}
}

// Load loads configuration from file.
func (c *Config) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.filePath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var configData map[string]interface{}
	if err := json.Unmarshal(data, &configData); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	c.data = configData

	if info, err := os.Stat(c.filePath); err == nil {
		c.lastMod = info.ModTime()
	}

	return nil
}

// Save saves configuration to file.
func (c *Config) Save() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := json.MarshalIndent(c.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Get returns a configuration value.
func (c *Config) Get(key string) (interface{}, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	value, exists := c.data[key]
	if !exists {
		return nil, fmt.Errorf("key %s not found", key)
	}

	return value, nil
}

// Set sets a configuration value and notifies any watchers on that key.
func (c *Config) Set(key string, value interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	oldValue := c.data[key]
	c.data[key] = value

	if watchers, exists := c.watchers[key]; exists {
		for _, ch := range watchers {
			select {
			case ch <- value:
			default:
			}
		}
	}

	if oldValue != value {
		c.lastMod = time.Now()
	}

	return nil
}

// Watch returns a channel fed on every Set of key. A full channel drops
// the notification rather than blocking Set.
func (c *Config) Watch(key string) (<-chan interface{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan interface{}, 10)
	c.watchers[key] = append(c.watchers[key], ch)

	return ch, nil
}

// CheckForUpdates reports whether the config file's mtime has advanced
// since the last Load.
func (c *Config) CheckForUpdates() (bool, error) {
	info, err := os.Stat(c.filePath)
	if err != nil {
		return false, fmt.Errorf("failed to stat config file: %w", err)
	}

	c.mu.RLock()
	lastMod := c.lastMod
	c.mu.RUnlock()

	return info.ModTime().After(lastMod), nil
}

// Reload reloads configuration from file if it has been modified.
func (c *Config) Reload() (bool, error) {
	updated, err := c.CheckForUpdates()
	if err != nil {
		return false, err
	}

	if !updated {
		return false, nil
	}

	if err := c.Load(); err != nil {
		return false, err
	}

	return true, nil
}

// LoadBridgeDefaults loads and parses the bootstrap document.
func LoadBridgeDefaults(filePath string) (*BridgeDefaults, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	bd := DefaultBridgeDefaults()
	if err := json.Unmarshal(data, bd); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return bd, nil
}

// SaveBridgeDefaults saves the bootstrap document to file.
func SaveBridgeDefaults(filePath string, bd *BridgeDefaults) error {
	data, err := json.MarshalIndent(bd, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// RootProtectDuration parses RootProtectTimeout, falling back to 30s on
// an empty or malformed value.
func (bd *BridgeDefaults) RootProtectDuration() time.Duration {
	d, err := time.ParseDuration(bd.RootProtectTimeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// DefaultBridgeDefaults returns the bootstrap document used when no
// config file is supplied, matching the daemon's cold-start defaults.
func DefaultBridgeDefaults() *BridgeDefaults {
	return &BridgeDefaults{
		MaxStpInstances:    255,
		ProtoMode:          "pvst",
		IPCSocketPath:      "/var/run/stpipc.sock",
		CtlSocketPath:      "/var/run/stpctl.sock",
		RootProtectTimeout: "30s",
		LogLevel:           "info",
		DiagStorePath:      "/var/lib/pvstd/diag.db",
		CaptureRingSize:    256,
		Protection: ProtectionDefaults{
			BPDUGuard: false,
			PortFast:  false,
		},
		StpCtlAuth: StpCtlAuthConfig{
			Enabled: false,
		},
	}
}
