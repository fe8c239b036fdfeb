// Package config holds the recognized configuration surface for
// tangle-index (spec.md §6): cluster contact points, keyspace name, and
// whether to create the tables on init. Finding and watching the config
// file is the outer CLI's job (spec.md's Non-goals); this package only
// carries the shape and validation of the options themselves, which is
// ambient infrastructure every constructor needs.
package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the recognized option set from spec.md §6.
type Config struct {
	// Hosts is the cluster's contact points.
	Hosts []string `toml:"hosts"`
	// KeyspaceName is the keyspace to create (if absent) and bind to.
	KeyspaceName string `toml:"keyspace_name"`
	// CreateTables, if true, makes Init create both tables if they do not
	// exist; existing tables and their rows are kept. Dropping and
	// recreating them is the separate Session.ResetSchema (see DESIGN.md).
	CreateTables bool `toml:"create_tables"`
}

// Option mutates a Config; used for test wiring and programmatic overrides
// on top of a loaded file.
type Option func(*Config)

// WithHosts overrides the contact points.
func WithHosts(hosts ...string) Option {
	return func(c *Config) { c.Hosts = hosts }
}

// WithKeyspace overrides the keyspace name.
func WithKeyspace(name string) Option {
	return func(c *Config) { c.KeyspaceName = name }
}

// WithCreateTables overrides the create_tables flag.
func WithCreateTables(create bool) Option {
	return func(c *Config) { c.CreateTables = create }
}

// Load parses a TOML config file at path and applies any overrides, then
// validates the result.
func Load(path string, opts ...Option) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// New builds a Config purely from overrides, without reading a file —
// the path tests and embedders use.
func New(opts ...Option) (*Config, error) {
	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the recognized options are well-formed.
func (c *Config) Validate() error {
	if len(c.Hosts) == 0 {
		return fmt.Errorf("config: hosts must not be empty")
	}
	for _, h := range c.Hosts {
		if strings.TrimSpace(h) == "" {
			return fmt.Errorf("config: hosts entries must not be blank")
		}
	}
	if strings.TrimSpace(c.KeyspaceName) == "" {
		return fmt.Errorf("config: keyspace_name must not be empty")
	}
	return nil
}
