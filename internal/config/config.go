// Package config loads the YAML configuration shared by every mode.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/phobologic/astdistance/internal/canon"
	"github.com/phobologic/astdistance/internal/discover"
	"github.com/phobologic/astdistance/internal/distance"
	"github.com/phobologic/astdistance/internal/lint"
	"github.com/phobologic/astdistance/internal/match"
	"github.com/phobologic/astdistance/internal/model"
	"github.com/phobologic/astdistance/internal/parse"
)

// DefaultFile is the config file picked up from the working directory.
const DefaultFile = ".astdistance.yaml"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config is the root configuration.
type Config struct {
	// Workers bounds parallel loading and scoring. Zero uses GOMAXPROCS.
	Workers     int            `yaml:"workers"`
	MaxFileSize int64          `yaml:"max_file_size"`
	SkipTests   bool           `yaml:"skip_tests"`
	Exclude     []string       `yaml:"exclude"`
	Markers     []string       `yaml:"markers"`
	Distance    DistanceConfig `yaml:"distance"`
	Match       MatchConfig    `yaml:"match"`
	Lint        LintConfig     `yaml:"lint"`
}

// DistanceConfig holds the cost model.
type DistanceConfig struct {
	MaxNodes       int            `yaml:"max_nodes"`
	IgnoreComments bool           `yaml:"ignore_comments"`
	Costs          distance.Costs `yaml:"costs"`
}

// MatchConfig tunes file matching.
type MatchConfig struct {
	Threshold  float64 `yaml:"threshold"`
	GroupDepth int     `yaml:"group_depth"`
	// MaxNodes overrides distance.max_nodes while matching.
	MaxNodes int `yaml:"max_nodes"`
}

// LintConfig tunes the lint rules.
type LintConfig struct {
	SkeletonDepth int                   `yaml:"skeleton_depth"`
	MinSamples    int                   `yaml:"min_samples"`
	Rules         map[string]RuleConfig `yaml:"rules"`
}

// RuleConfig overrides one rule. Unset fields keep the rule's default.
type RuleConfig struct {
	Threshold *float64 `yaml:"threshold,omitempty"`
	Severity  string   `yaml:"severity,omitempty"`
	Enabled   *bool    `yaml:"enabled,omitempty"`
}

// Default returns the built-in configuration with every rule spelled out.
func Default() *Config {
	d := distance.DefaultConfig()
	m := match.DefaultConfig()
	rules := make(map[string]RuleConfig)
	for id, r := range lint.DefaultRules() {
		rc := RuleConfig{Severity: string(r.Severity), Enabled: ptr(r.Enabled)}
		if r.Threshold > 0 {
			rc.Threshold = ptr(r.Threshold)
		}
		rules[id] = rc
	}
	return &Config{
		MaxFileSize: parse.DefaultMaxFileSize,
		Markers:     append([]string(nil), canon.DefaultMarkers...),
		Distance: DistanceConfig{
			MaxNodes:       d.MaxNodes,
			IgnoreComments: d.IgnoreComments,
			Costs:          d.Costs,
		},
		Match: MatchConfig{
			Threshold:  m.Threshold,
			GroupDepth: m.GroupDepth,
			MaxNodes:   m.Distance.MaxNodes,
		},
		Lint: LintConfig{
			SkeletonDepth: lint.DefaultSkeletonDepth,
			MinSamples:    lint.DefaultMinSamples,
			Rules:         rules,
		},
	}
}

// Load reads path over the defaults and validates the result. A missing
// file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Marshal encodes the configuration with two-space indentation.
func (c *Config) Marshal() ([]byte, error) {
	var b strings.Builder
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return []byte(b.String()), nil
}

// Validate checks ranges, patterns and rule names.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
	}
	if c.Workers < 0 {
		return invalid("workers must be non-negative, got %d", c.Workers)
	}
	if c.MaxFileSize < 0 {
		return invalid("max_file_size must be non-negative, got %d", c.MaxFileSize)
	}
	if err := discover.ValidatePatterns(c.Exclude); err != nil {
		return invalid("%v", err)
	}
	for _, m := range c.Markers {
		if m == "" || strings.ContainsAny(m, " \t\n") {
			return invalid("marker %q must be a single word", m)
		}
	}
	if c.Distance.MaxNodes < 0 {
		return invalid("distance.max_nodes must be non-negative, got %d", c.Distance.MaxNodes)
	}
	if err := c.Distance.Costs.Validate(); err != nil {
		return invalid("distance.costs: %v", err)
	}
	if c.Match.Threshold < 0 || c.Match.Threshold > 1 {
		return invalid("match.threshold must be within [0,1], got %v", c.Match.Threshold)
	}
	if c.Match.GroupDepth < 0 {
		return invalid("match.group_depth must be non-negative, got %d", c.Match.GroupDepth)
	}
	if c.Match.MaxNodes < 0 {
		return invalid("match.max_nodes must be non-negative, got %d", c.Match.MaxNodes)
	}
	if c.Lint.SkeletonDepth < 1 {
		return invalid("lint.skeleton_depth must be at least 1, got %d", c.Lint.SkeletonDepth)
	}
	if c.Lint.MinSamples < 1 {
		return invalid("lint.min_samples must be at least 1, got %d", c.Lint.MinSamples)
	}
	known := lint.DefaultRules()
	for id, rc := range c.Lint.Rules {
		if _, ok := known[id]; !ok {
			return invalid("unknown lint rule %q (known: %s)", id, strings.Join(lint.RuleIDs(), ", "))
		}
		if rc.Threshold != nil && (*rc.Threshold < 0 || *rc.Threshold > 1) {
			return invalid("lint.rules.%s.threshold must be within [0,1], got %v", id, *rc.Threshold)
		}
		if rc.Severity != "" {
			if _, ok := model.ParseSeverity(rc.Severity); !ok {
				return invalid("lint.rules.%s.severity %q is not error, warning or info", id, rc.Severity)
			}
		}
	}
	return nil
}

// DistanceConfig returns the distance engine settings.
func (c *Config) DistanceConfig() distance.Config {
	return distance.Config{
		Costs:          c.Distance.Costs,
		MaxNodes:       c.Distance.MaxNodes,
		IgnoreComments: c.Distance.IgnoreComments,
	}
}

// MatchConfig returns the matcher settings.
func (c *Config) MatchConfig(workers int, log *zap.Logger) match.Config {
	d := c.DistanceConfig()
	d.MaxNodes = c.Match.MaxNodes
	return match.Config{
		Threshold:  c.Match.Threshold,
		GroupDepth: c.Match.GroupDepth,
		Workers:    workers,
		Distance:   d,
		Logger:     log,
	}
}

// LintConfig returns the lint settings with rule overrides merged onto the
// defaults. The config must have passed Validate.
func (c *Config) LintConfig(log *zap.Logger) lint.Config {
	rules := lint.DefaultRules()
	for id, rc := range c.Lint.Rules {
		r, ok := rules[id]
		if !ok {
			continue
		}
		if rc.Threshold != nil {
			r.Threshold = *rc.Threshold
		}
		if sev, ok := model.ParseSeverity(rc.Severity); ok {
			r.Severity = sev
		}
		if rc.Enabled != nil {
			r.Enabled = *rc.Enabled
		}
		rules[id] = r
	}
	return lint.Config{
		Rules:         rules,
		SkeletonDepth: c.Lint.SkeletonDepth,
		MinSamples:    c.Lint.MinSamples,
		Distance:      c.DistanceConfig(),
		Logger:        log,
	}
}

// LoadOptions returns the loader settings for one tree.
func (c *Config) LoadOptions(language string, workers int, log *zap.Logger) parse.Options {
	return parse.Options{
		Language:    language,
		Workers:     workers,
		MaxFileSize: c.MaxFileSize,
		Exclude:     c.Exclude,
		SkipTests:   c.SkipTests,
		Markers:     c.Markers,
		Logger:      log,
	}
}

func ptr[T any](v T) *T { return &v }
