// Package config reads the pipeline's environment-variable configuration
// once at startup and threads it explicitly from there on; nothing
// downstream calls os.Getenv directly.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

// Config is the immutable, process-wide set of environment-derived
// toggles. Construct one with FromEnv and pass it down explicitly.
type Config struct {
	Debug      int  // DEBUG: 0-10 verbosity
	NoStdLib   bool // NO_STD_LIB: skip loading the standard prelude
	NoStdMain  bool // NO_STD_MAIN: don't synthesize a default entry point
	NoBuiltins bool // NO_BUILTINS: disable compiler-internal Builtin nodes
	ShowEnv    bool // SHOW_ENV: dump the type environment before inference
	ShowTypes  bool // SHOW_TYPES: print each declaration's inferred scheme
	Overrides  Overrides
}

// Overrides is the optional zinfer.yaml project file: class defaults
// a project can set without touching the hand-rolled demo AST
// (cmd/zinfer has no lexer/parser to read a project's own source from).
type Overrides struct {
	// Defaults maps a class name to the builtin head type name
	// (Int, Float, String, Bool) it should default to when a predicate
	// on that class is never resolved to a concrete instance by
	// unification alone - the yaml-file equivalent of LoadBuiltins'
	// hardcoded Num -> Int default.
	Defaults map[string]string `yaml:"defaults"`
}

// FromEnv reads the six recognized environment variables exactly once.
func FromEnv() Config {
	return Config{
		Debug:      envInt("DEBUG", 0),
		NoStdLib:   envBool("NO_STD_LIB"),
		NoStdMain:  envBool("NO_STD_MAIN"),
		NoBuiltins: envBool("NO_BUILTINS"),
		ShowEnv:    envBool("SHOW_ENV"),
		ShowTypes:  envBool("SHOW_TYPES"),
	}
}

// LoadOverrides reads and parses path as a zinfer.yaml project file. A
// missing file is not an error - the override file is entirely
// optional - but a malformed one is.
func LoadOverrides(path string) (Overrides, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Overrides{}, nil
	}
	if err != nil {
		return Overrides{}, err
	}
	var o Overrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return Overrides{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return o, nil
}

func envInt(name string, def int) int {
	v, ok := os.LookupEnv(name)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	if n > 10 {
		n = 10
	}
	return n
}

func envBool(name string) bool {
	v, ok := os.LookupEnv(name)
	if !ok {
		return false
	}
	return v != "" && v != "0" && v != "false"
}

// Debugf writes a message to stderr, colored by phase, when cfg.Debug is
// at or above level.
func (c Config) Debugf(level int, phase, format string, args ...interface{}) {
	if c.Debug < level {
		return
	}
	prefix := color.CyanString("[%s]", phase)
	fmt.Fprintf(os.Stderr, "%s %s\n", prefix, fmt.Sprintf(format, args...))
}
