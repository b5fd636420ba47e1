// Package config parses the gateway's TOML configuration file. It is the
// "external collaborator" the core subsystems never talk to directly: they
// only ever see the already-populated Config value this package produces.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/btcsuite/btclog"
	"github.com/go-errors/errors"
	"github.com/pelletier/go-toml/v2"

	"github.com/ridh7/meshgate/meshlog"
)

var log btclog.Logger = meshlog.Disabled

// UseLogger swaps the package-level logger.
func UseLogger(logger btclog.Logger) { log = logger }

// PeerSeed is one entry of the static seed list read from [[peers]].
type PeerSeed struct {
	NodeID  string `toml:"node_id"`
	Address string `toml:"address"`
}

// Config is the parsed, defaulted node configuration described in
// spec.md §6.
type Config struct {
	NodeID     string     `toml:"node_id"`
	ListenPort uint16     `toml:"listen_port"`
	CertPath   string     `toml:"cert_path"`
	KeyPath    string     `toml:"key_path"`
	CACertPath string     `toml:"ca_cert_path"`
	Peers      []PeerSeed `toml:"peers"`
}

// Load reads and validates the TOML file at path, filling in default
// certificate paths when they're omitted.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config %s: %v", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return nil, errors.Errorf("parsing config %s: %v", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	log.Infof("loaded config for node %s: %d seed peers", cfg.NodeID, len(cfg.Peers))

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.NodeID == "" {
		return errors.New("config: node_id is required")
	}
	if c.ListenPort == 0 {
		return errors.New("config: listen_port is required")
	}
	for i, p := range c.Peers {
		if p.NodeID == "" {
			return errors.Errorf("config: peers[%d] missing node_id", i)
		}
		if p.Address == "" {
			return errors.Errorf("config: peers[%d] missing address", i)
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.CertPath == "" {
		c.CertPath = filepath.Join("certs", fmt.Sprintf("%s.crt", c.NodeID))
	}
	if c.KeyPath == "" {
		c.KeyPath = filepath.Join("certs", fmt.Sprintf("%s.key", c.NodeID))
	}
	if c.CACertPath == "" {
		c.CACertPath = filepath.Join("certs", "ca.crt")
	}
}

// ListenAddr returns the loopback address the gateway binds to, per
// spec.md §6.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("127.0.0.1:%d", c.ListenPort)
}
