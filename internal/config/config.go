package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Results      Results                   `yaml:"results"`
	EnvFile      string                    `yaml:"env_file"`
	Parallel     int                       `yaml:"parallel"`
	Modules      []string                  `yaml:"modules"`
	ModuleParams map[string]map[string]any `yaml:"module_params"`
	Docs         Docs                      `yaml:"docs"`
	Tests        []Test                    `yaml:"tests"`
}

type Results struct {
	Dir string `yaml:"dir"`
}

// Docs configures `benchlit docs build`.
type Docs struct {
	Language string `yaml:"language"`
	Shell    string `yaml:"shell"`
	TabWidth int    `yaml:"tab_width"`
}

type Test struct {
	Name           string            `yaml:"name"`
	Dir            string            `yaml:"dir"`
	Prepare        []string          `yaml:"prepare"`
	Run            []string          `yaml:"run"`
	Verify         []string          `yaml:"verify"`
	Modules        []string          `yaml:"modules"`
	TimeoutMinutes int               `yaml:"timeout_minutes"`
	Image          string            `yaml:"image"`
	CPULimit       float64           `yaml:"cpu_limit"`
	MemoryMB       int64             `yaml:"memory_mb"`
	Env            map[string]string `yaml:"env"`
}

// Timeout is the per-script time limit.
func (t *Test) Timeout() time.Duration {
	return time.Duration(t.TimeoutMinutes) * time.Minute
}

// Load reads and validates the config at path. Relative test directories
// and the env file are resolved against the config file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	base, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}
	if err := validate(&cfg, base); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func validate(cfg *Config, base string) error {
	if cfg.Results.Dir == "" {
		cfg.Results.Dir = "results"
	}
	if cfg.Parallel < 1 {
		cfg.Parallel = 1
	}
	if cfg.EnvFile != "" && !filepath.IsAbs(cfg.EnvFile) {
		cfg.EnvFile = filepath.Join(base, cfg.EnvFile)
	}
	if cfg.Docs.Language == "" {
		cfg.Docs.Language = "sh"
	}
	if cfg.Docs.TabWidth == 0 {
		cfg.Docs.TabWidth = 8
	}
	if cfg.Docs.TabWidth < 1 {
		return fmt.Errorf("docs: tab_width must be positive")
	}

	if len(cfg.Tests) == 0 {
		return fmt.Errorf("no tests defined")
	}
	seen := make(map[string]bool)
	for i := range cfg.Tests {
		t := &cfg.Tests[i]
		if t.Name == "" {
			return fmt.Errorf("test %d: name is required", i)
		}
		if strings.ContainsAny(t.Name, `/\`) || t.Name == "." || t.Name == ".." {
			return fmt.Errorf("test %q: name must be usable as a directory name", t.Name)
		}
		if seen[t.Name] {
			return fmt.Errorf("test %q: duplicate name", t.Name)
		}
		seen[t.Name] = true
		if len(t.Run) == 0 {
			return fmt.Errorf("test %q: run is required", t.Name)
		}
		if t.TimeoutMinutes < 0 {
			return fmt.Errorf("test %q: timeout_minutes must not be negative", t.Name)
		}
		if t.TimeoutMinutes == 0 {
			t.TimeoutMinutes = 30
		}
		if t.Dir == "" {
			t.Dir = "."
		}
		if !filepath.IsAbs(t.Dir) {
			t.Dir = filepath.Join(base, t.Dir)
		}
		if t.Modules == nil {
			t.Modules = cfg.Modules
		}
	}
	return nil
}

// Test returns the test named name.
func (c *Config) Test(name string) (*Test, bool) {
	for i := range c.Tests {
		if c.Tests[i].Name == name {
			return &c.Tests[i], true
		}
	}
	return nil, false
}

// LoadEnvFile reads a dotenv file: KEY=VALUE lines with # comments, an
// optional `export ` prefix, quoted values and ${VAR} expansion. Malformed
// lines are an error.
func LoadEnvFile(path string) (map[string]string, error) {
	env, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("reading env file %s: %w", path, err)
	}
	return env, nil
}
