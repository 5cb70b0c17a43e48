package core

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/arc-language/pkglicense/pkg/dpkg"
	"github.com/arc-language/pkglicense/pkg/report"
	"github.com/arc-language/pkglicense/pkg/scan"
)

// Config holds pkglicense configuration
type Config struct {
	Format         string           `yaml:"format"`
	Policy         string           `yaml:"policy"`
	Jobs           int              `yaml:"jobs"`
	Timeout        time.Duration    `yaml:"timeout"`         // Bound on each single probe
	PackageTimeout time.Duration    `yaml:"package_timeout"` // Bound on a whole package (0: none)
	StatusFile     string           `yaml:"status_file"`
	DocDir         string           `yaml:"doc_dir"`
	ArchiveDir     string           `yaml:"archive_dir"`
	RegistryDir    string           `yaml:"registry_dir"`
	RegistryURL    string           `yaml:"registry_url"`
	RegistryBranch string           `yaml:"registry_branch"`
	Debug          bool             `yaml:"debug"`
	Resolvers      []ResolverConfig `yaml:"resolvers"`

	Logger *log.Logger `yaml:"-"` // Custom logger handed to every component (optional)
}

// ResolverConfig describes one entry of the resolver chain. The order of
// entries in Config.Resolvers is the resolution priority.
type ResolverConfig struct {
	Name     string   `yaml:"name,omitempty"`     // Identifier shown in reports (defaults to the type)
	Type     string   `yaml:"type"`               // dep5, common-licenses, registry, sqlite, deb-archive, exec, exec-dir
	Path     string   `yaml:"path,omitempty"`     // Overrides the directory or database file of the strategy
	Command  string   `yaml:"command,omitempty"`  // exec only
	Args     []string `yaml:"args,omitempty"`     // exec only, passed before the package name
	Required bool     `yaml:"required,omitempty"` // registry only
	Disabled bool     `yaml:"disabled,omitempty"`
}

// DefaultResolvers returns the built-in chain, most specific source first
func DefaultResolvers() []ResolverConfig {
	return []ResolverConfig{
		{Type: "dep5"},
		{Type: "common-licenses"},
		{Type: "deb-archive"},
		{Type: "registry"},
	}
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Format:         report.FormatTable.String(),
		Policy:         scan.PolicyStrict.String(),
		Jobs:           4,
		Timeout:        30 * time.Second,
		StatusFile:     dpkg.DefaultStatusFile,
		DocDir:         dpkg.DefaultDocDir,
		ArchiveDir:     dpkg.DefaultArchiveDir,
		RegistryDir:    getDefaultRegistryDir(),
		RegistryURL:    DefaultRegistryURL,
		RegistryBranch: DefaultRegistryBranch,
		Debug:          false,
		Resolvers:      DefaultResolvers(),
	}
}

// DefaultConfigPath returns $HOME/.config/pkglicense/config.yaml
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "pkglicense", "config.yaml"), nil
}

// LoadConfig loads configuration from file. Values missing from the file
// keep their defaults; a missing file yields the default configuration.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultConfigPath()
		if err != nil {
			return DefaultConfig(), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to file
func SaveConfig(cfg *Config, path string) error {
	if path == "" {
		p, err := DefaultConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// Validate checks enumerated values and ranges
func (c *Config) Validate() error {
	if _, err := report.ParseFormat(c.Format); err != nil {
		return err
	}
	if _, err := scan.ParsePolicy(c.Policy); err != nil {
		return err
	}
	if c.Jobs < 1 {
		return fmt.Errorf("jobs must be at least 1, got %d", c.Jobs)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	if c.PackageTimeout < 0 {
		return fmt.Errorf("package_timeout must not be negative, got %s", c.PackageTimeout)
	}
	for i, r := range c.Resolvers {
		if r.Type == "" {
			return fmt.Errorf("resolver %d: type is required", i)
		}
		if r.Type == "exec" && r.Command == "" {
			return fmt.Errorf("resolver %d: exec resolver needs a command", i)
		}
		if (r.Type == "sqlite" || r.Type == "exec-dir") && r.Path == "" {
			return fmt.Errorf("resolver %d: %s resolver needs a path", i, r.Type)
		}
	}
	return nil
}

func getDefaultRegistryDir() string {
	if path := os.Getenv("PKGLICENSE_REGISTRY"); path != "" {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "pkglicense", "licenses")
	}

	return filepath.Join(home, ".cache", "pkglicense", "licenses")
}
