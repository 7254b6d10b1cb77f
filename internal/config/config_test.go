package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Output != "" || cfg.EmitLLVM {
		t.Errorf("defaults changed: %+v", cfg)
	}
	if cfg.Toolchain.Command != DefaultToolchainCommand {
		t.Errorf("toolchain command = %q", cfg.Toolchain.Command)
	}
	if len(cfg.Toolchain.Args) == 0 {
		t.Error("toolchain args empty")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	content := `
output: build/app
emit_llvm: true
toolchain:
  command: clang-18
  args: ["-x", "ir", "-"]
`
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Output != "build/app" {
		t.Errorf("output = %q", cfg.Output)
	}
	if !cfg.EmitLLVM {
		t.Error("emit_llvm not set")
	}
	if cfg.Toolchain.Command != "clang-18" {
		t.Errorf("command = %q", cfg.Toolchain.Command)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("output: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(dir); err == nil {
		t.Error("malformed yaml should error")
	}
}
