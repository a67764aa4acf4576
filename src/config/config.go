// Package config loads the sparse-crates YAML configuration.
package config

import (
	"errors"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

const defaultConfigFile = ".sparse-crates.yml"

// DefaultIndexURL is the crates.io sparse index.
const DefaultIndexURL = "https://index.crates.io/"

// DefaultDocsURL is the documentation base for the default registry.
const DefaultDocsURL = "https://docs.rs/"

// DefaultCacheDir is cargo's on-disk identifier for the crates.io sparse
// index under ~/.cargo/registry/index/.
const DefaultCacheDir = "index.crates.io-6f17d22bba15001f"

// Config is the top-level sparse-crates configuration.
type Config struct {
	Registry     RegistryConfig `yaml:"registry"`
	Git          GitConfig      `yaml:"git"`
	Concurrency  int            `yaml:"concurrency"`
	UserAgent    string         `yaml:"user_agent"`
	TargetBranch string         `yaml:"target_branch"`
	Badge        BadgeConfig    `yaml:"badge"`
}

// RegistryConfig selects and describes crate registries.
type RegistryConfig struct {
	Index       string          `yaml:"index"`     // default registry index URL
	CacheDir    string          `yaml:"cache_dir"` // cargo cache id for the default registry
	UseCache    bool            `yaml:"use_cache"` // consult cargo's local index cache
	Registries  []NamedRegistry `yaml:"registries"`
	Replacement *NamedRegistry  `yaml:"replacement"` // source replacement (mirror)
}

// NamedRegistry is an alternate registry referred to by name in manifests
// (or anonymously as the source replacement).
type NamedRegistry struct {
	Name     string `yaml:"name"`
	Index    string `yaml:"index"`
	Docs     string `yaml:"docs"`
	Token    string `yaml:"token"`
	CacheDir string `yaml:"cache_dir"`
}

// GitConfig carries custom git host definitions for the raw-file
// fallback.
type GitConfig struct {
	Hosts []GitHost `yaml:"hosts"`
}

// GitHost maps a self-hosted forge to a raw-file URL convention.
type GitHost struct {
	Host  string `yaml:"host"`  // pattern matched against the repository URL host
	Kind  string `yaml:"kind"`  // "github" or "gitlab"
	Token string `yaml:"token"` // optional bearer token
}

// BadgeConfig controls SVG badge rendering.
type BadgeConfig struct {
	Label string `yaml:"label"` // left-side text, default "deps"
	Font  string `yaml:"font"`  // optional TTF/OTF path for exact text metrics
}

// Load reads configuration from a YAML file. If path is empty, it tries
// the default file. Returns defaults if the file doesn't exist.
func Load(path string) (*Config, error) {
	if path == "" {
		path = defaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return defaults(), nil
		}
		return nil, err
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.Registry.Registries = mergeRegistries(cfg.Registry.Registries)
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Registry: RegistryConfig{
			Index:    DefaultIndexURL,
			CacheDir: DefaultCacheDir,
			UseCache: true,
		},
		Concurrency: 4,
		UserAgent:   "sparse-crates",
		Badge:       BadgeConfig{Label: "deps"},
	}
}

// mergeRegistries deduplicates by name, later entries overriding earlier
// ones, preserving first-seen order.
func mergeRegistries(regs []NamedRegistry) []NamedRegistry {
	byName := make(map[string]int, len(regs))
	var merged []NamedRegistry
	for _, r := range regs {
		if i, ok := byName[r.Name]; ok {
			merged[i] = r
			continue
		}
		byName[r.Name] = len(merged)
		merged = append(merged, r)
	}
	return merged
}

// LookupRegistry finds a named registry, reporting whether it exists.
func (c *Config) LookupRegistry(name string) (NamedRegistry, bool) {
	for _, r := range c.Registry.Registries {
		if r.Name == name {
			return r, true
		}
	}
	return NamedRegistry{}, false
}
