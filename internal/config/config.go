// Package config loads harness configuration from YAML with environment
// overrides. Defaults target the public Translator deployments so a bare
// `onehop run` against a KP needs nothing beyond the suite file and a URL.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all onehop configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Target TRAPI component under test
	Target TargetConfig `yaml:"target"`

	// Ontology KP and Node Normalizer services
	Ontology OntologyConfig `yaml:"ontology"`

	// Autonomous Relay System retrieval
	ARS ARSConfig `yaml:"ars"`

	// Run archive
	Report ReportConfig `yaml:"report"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// TargetConfig configures the component under test.
type TargetConfig struct {
	URL            string `yaml:"url"`
	TRAPIVersion   string `yaml:"trapi_version"`
	BiolinkVersion string `yaml:"biolink_version"`
	Timeout        string `yaml:"timeout"`
	MaxConcurrent  int    `yaml:"max_concurrent"`
	RequestSpacing string `yaml:"request_spacing"`
}

// OntologyConfig configures the vocabulary services used by the
// entity-raising templates.
type OntologyConfig struct {
	KPURL         string `yaml:"kp_url"`
	NormalizerURL string `yaml:"normalizer_url"`
	Timeout       string `yaml:"timeout"`
}

// ARSConfig configures ARS response retrieval.
type ARSConfig struct {
	Hosts   []string `yaml:"hosts"`
	Timeout string   `yaml:"timeout"`
}

// ReportConfig configures the run archive.
type ReportConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// LoggingConfig configures file logging.
type LoggingConfig struct {
	Enabled    bool            `yaml:"enabled"`
	Level      string          `yaml:"level"` // debug, info, warn, error
	Categories map[string]bool `yaml:"categories,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "onehop",
		Version: "0.3.0",

		Target: TargetConfig{
			TRAPIVersion:   "1.5.0",
			BiolinkVersion: "4.2.1",
			Timeout:        "600s",
			MaxConcurrent:  4,
			RequestSpacing: "100ms",
		},

		Ontology: OntologyConfig{
			KPURL:         "https://automat.transltr.io/ontology-kp/query",
			NormalizerURL: "https://nodenormalization-sri.renci.org/get_normalized_nodes",
			Timeout:       "60s",
		},

		ARS: ARSConfig{
			Hosts: []string{
				"ars-prod.transltr.io",
				"ars.test.transltr.io",
				"ars.ci.transltr.io",
				"ars-dev.transltr.io",
				"ars.transltr.io",
			},
			Timeout: "60s",
		},

		Report: ReportConfig{
			DatabasePath: filepath.Join(".onehop", "reports.db"),
		},

		Logging: LoggingConfig{
			Enabled: true,
			Level:   "info",
		},
	}
}

// Load loads configuration from a YAML file, falling back to defaults when
// the file does not exist. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies ONEHOP_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("ONEHOP_TARGET_URL"); url != "" {
		c.Target.URL = url
	}
	if v := os.Getenv("ONEHOP_TRAPI_VERSION"); v != "" {
		c.Target.TRAPIVersion = v
	}
	if v := os.Getenv("ONEHOP_BIOLINK_VERSION"); v != "" {
		c.Target.BiolinkVersion = v
	}
	if url := os.Getenv("ONEHOP_ONTOLOGY_KP_URL"); url != "" {
		c.Ontology.KPURL = url
	}
	if url := os.Getenv("ONEHOP_NODE_NORMALIZER_URL"); url != "" {
		c.Ontology.NormalizerURL = url
	}
	if path := os.Getenv("ONEHOP_DB"); path != "" {
		c.Report.DatabasePath = path
	}
	if hosts := os.Getenv("ONEHOP_ARS_HOSTS"); hosts != "" {
		c.ARS.Hosts = strings.Split(hosts, ",")
	}
}

// GetTargetTimeout returns the per-query timeout as a duration.
func (c *Config) GetTargetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Target.Timeout)
	if err != nil {
		return 600 * time.Second
	}
	return d
}

// GetRequestSpacing returns the minimum spacing between target requests.
func (c *Config) GetRequestSpacing() time.Duration {
	d, err := time.ParseDuration(c.Target.RequestSpacing)
	if err != nil {
		return 100 * time.Millisecond
	}
	return d
}

// GetOntologyTimeout returns the vocabulary service timeout as a duration.
func (c *Config) GetOntologyTimeout() time.Duration {
	d, err := time.ParseDuration(c.Ontology.Timeout)
	if err != nil {
		return 60 * time.Second
	}
	return d
}

// GetARSTimeout returns the ARS retrieval timeout as a duration.
func (c *Config) GetARSTimeout() time.Duration {
	d, err := time.ParseDuration(c.ARS.Timeout)
	if err != nil {
		return 60 * time.Second
	}
	return d
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Target.MaxConcurrent < 1 {
		return fmt.Errorf("target.max_concurrent must be at least 1, got %d", c.Target.MaxConcurrent)
	}
	if len(c.ARS.Hosts) == 0 {
		return fmt.Errorf("ars.hosts must name at least one host")
	}
	if c.Target.URL != "" && !strings.Contains(c.Target.URL, "://") {
		return fmt.Errorf("target.url %q is not an absolute URL", c.Target.URL)
	}
	return nil
}

// DefaultConfigPath returns the default config location in a workspace.
func DefaultConfigPath(workspace string) string {
	return filepath.Join(workspace, ".onehop", "config.yaml")
}
