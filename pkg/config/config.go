// Package config loads the minipas ceilings and output settings from a TOML
// or YAML file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"minipas/pkg/compiler"
	"minipas/pkg/interp"
)

// Config holds the complete tool configuration
type Config struct {
	Parser      ParserConfig      `toml:"parser" yaml:"parser"`
	Interpreter InterpreterConfig `toml:"interpreter" yaml:"interpreter"`
	Output      OutputConfig      `toml:"output" yaml:"output"`
}

// ParserConfig holds the parser depth ceilings
type ParserConfig struct {
	MaxRecursionDepth  int `toml:"max_recursion_depth" yaml:"max_recursion_depth"`
	MaxNestingDepth    int `toml:"max_nesting_depth" yaml:"max_nesting_depth"`
	MaxExpressionDepth int `toml:"max_expression_depth" yaml:"max_expression_depth"`
}

// InterpreterConfig holds the runtime guards
type InterpreterConfig struct {
	MaxLoopIterations int `toml:"max_loop_iterations" yaml:"max_loop_iterations"`
	MaxOutputLines    int `toml:"max_output_lines" yaml:"max_output_lines"`
}

// OutputConfig holds CLI rendering settings
type OutputConfig struct {
	NoColor  bool   `toml:"no_color" yaml:"no_color"`
	LogLevel string `toml:"log_level" yaml:"log_level"`
}

// EnvVar names the environment variable LoadFromEnv consults first.
const EnvVar = "MINIPAS_CONFIG"

var ErrUnsupportedFormat = errors.New("unsupported config format")

// Default returns the built-in configuration.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// Load reads a configuration file. The format follows the extension:
// .toml, or .yaml/.yml. Missing fields take their defaults.
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromEnv loads the file named by MINIPAS_CONFIG, then the first of the
// default locations that exists. With neither it returns Default().
func LoadFromEnv() (*Config, error) {
	if path := os.Getenv(EnvVar); path != "" {
		return Load(path)
	}
	for _, p := range []string{"./minipas.toml", "./minipas.yaml", "./minipas.yml"} {
		if _, err := os.Stat(p); err == nil {
			return Load(p)
		}
	}
	return Default(), nil
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	pl := compiler.DefaultLimits()
	if c.Parser.MaxRecursionDepth == 0 {
		c.Parser.MaxRecursionDepth = pl.MaxRecursionDepth
	}
	if c.Parser.MaxNestingDepth == 0 {
		c.Parser.MaxNestingDepth = pl.MaxNestingDepth
	}
	if c.Parser.MaxExpressionDepth == 0 {
		c.Parser.MaxExpressionDepth = pl.MaxExpressionDepth
	}

	il := interp.DefaultLimits()
	if c.Interpreter.MaxLoopIterations == 0 {
		c.Interpreter.MaxLoopIterations = il.MaxLoopIterations
	}
	if c.Interpreter.MaxOutputLines == 0 {
		c.Interpreter.MaxOutputLines = il.MaxOutputLines
	}

	if c.Output.LogLevel == "" {
		c.Output.LogLevel = "info"
	}
}

// Validate checks that every ceiling is positive and the log level is known.
func (c *Config) Validate() error {
	checks := []struct {
		name  string
		value int
	}{
		{"parser.max_recursion_depth", c.Parser.MaxRecursionDepth},
		{"parser.max_nesting_depth", c.Parser.MaxNestingDepth},
		{"parser.max_expression_depth", c.Parser.MaxExpressionDepth},
		{"interpreter.max_loop_iterations", c.Interpreter.MaxLoopIterations},
		{"interpreter.max_output_lines", c.Interpreter.MaxOutputLines},
	}
	for _, chk := range checks {
		if chk.value <= 0 {
			return fmt.Errorf("invalid config: %s must be positive, got %d", chk.name, chk.value)
		}
	}
	if _, err := c.Output.Level(); err != nil {
		return err
	}
	return nil
}

// ParserLimits converts the parser section for compiler.ParseToASTWithLimits.
func (c *Config) ParserLimits() compiler.Limits {
	return compiler.Limits{
		MaxRecursionDepth:  c.Parser.MaxRecursionDepth,
		MaxNestingDepth:    c.Parser.MaxNestingDepth,
		MaxExpressionDepth: c.Parser.MaxExpressionDepth,
	}
}

// InterpreterLimits converts the interpreter section for interp.Options.
func (c *Config) InterpreterLimits() interp.Limits {
	return interp.Limits{
		MaxLoopIterations: c.Interpreter.MaxLoopIterations,
		MaxOutputLines:    c.Interpreter.MaxOutputLines,
	}
}

// Level parses LogLevel.
func (o OutputConfig) Level() (slog.Level, error) {
	switch strings.ToLower(o.LogLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("invalid config: unknown log level %q", o.LogLevel)
}
