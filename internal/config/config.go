// Package config holds the project constants and the optional bolt.yaml
// driver configuration.
//
// bolt.yaml lives next to the input file (or in the working directory for
// stdin input) and sets defaults the CLI flags can override:
//
//	output: build/app
//	emit_llvm: false
//	toolchain:
//	  command: clang-18
//	  args: ["-x", "ir", "-"]
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is looked up next to the compiled file.
const ConfigFileName = "bolt.yaml"

// Toolchain describes the external native toolchain invocation. The output
// path is appended after "-o".
type Toolchain struct {
	Command string   `yaml:"command,omitempty"`
	Args    []string `yaml:"args,omitempty"`
}

// Config is the parsed bolt.yaml.
type Config struct {
	// Output is the default output path.
	Output string `yaml:"output,omitempty"`

	// EmitLLVM makes the driver write textual IR instead of invoking the
	// toolchain, as if -e was passed.
	EmitLLVM bool `yaml:"emit_llvm,omitempty"`

	Toolchain Toolchain `yaml:"toolchain,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Toolchain: Toolchain{
			Command: DefaultToolchainCommand,
			Args:    append([]string(nil), DefaultToolchainArgs...),
		},
	}
}

// Load reads bolt.yaml from dir, falling back to defaults when the file does
// not exist. A present but malformed file is an error.
func Load(dir string) (*Config, error) {
	cfg := Default()

	path := filepath.Join(dir, ConfigFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if cfg.Toolchain.Command == "" {
		cfg.Toolchain.Command = DefaultToolchainCommand
	}
	if len(cfg.Toolchain.Args) == 0 {
		cfg.Toolchain.Args = append([]string(nil), DefaultToolchainArgs...)
	}

	return cfg, nil
}
