package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	"github.com/bolt-lang/bolt/internal/compiler"
	"github.com/bolt-lang/bolt/internal/config"
	"github.com/bolt-lang/bolt/internal/diagnostics"
)

// Exit codes: 0 success, the diagnostic ID for compile errors, and a
// distinct family for toolchain failures.
const (
	exitToolchainMissing = 101
	exitToolchainFailed  = 102
	exitUsage            = 103
)

func main() {
	var emitLLVM bool
	var dontWriteOutput bool
	var outputPath string
	var showVersion bool

	flag.BoolVar(&emitLLVM, "e", false, "write textual IR instead of invoking the toolchain")
	flag.BoolVar(&emitLLVM, "emit-llvm", false, "write textual IR instead of invoking the toolchain")
	flag.BoolVar(&dontWriteOutput, "d", false, "compile without writing any output")
	flag.BoolVar(&dontWriteOutput, "dont-write-output", false, "compile without writing any output")
	flag.StringVar(&outputPath, "o", "", "output path")
	flag.StringVar(&outputPath, "output-path", "", "output path")
	flag.BoolVar(&showVersion, "version", false, "print the version and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("bolt %s\n", config.Version)
		return
	}

	fileName := flag.Arg(0)

	sourceCode, err := readSource(fileName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUsage)
	}

	configDir := "."
	if fileName != "" {
		configDir = filepath.Dir(fileName)
	}
	cfg, err := config.Load(configDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, pkgerrors.Wrap(err, "loading bolt.yaml"))
		os.Exit(exitUsage)
	}

	ir, cerr := compiler.Compile(sourceCode, fileName)
	if cerr != nil {
		reportError(fileName, sourceCode, cerr)
		os.Exit(cerr.ID)
	}

	if dontWriteOutput {
		return
	}

	if outputPath == "" {
		outputPath = cfg.Output
	}
	emitLLVM = emitLLVM || cfg.EmitLLVM

	if outputPath == "" {
		if emitLLVM {
			outputPath = config.DefaultIRFileName
		} else {
			outputPath = config.DefaultExecutableFileName
		}
	}

	if emitLLVM {
		if err := os.WriteFile(outputPath, []byte(ir), 0o644); err != nil {
			fmt.Fprintln(os.Stderr, pkgerrors.Wrap(err, "writing IR"))
			os.Exit(exitUsage)
		}
		return
	}

	if err := runToolchain(cfg, ir, outputPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if pkgerrors.Is(err, exec.ErrNotFound) {
			os.Exit(exitToolchainMissing)
		}
		os.Exit(exitToolchainFailed)
	}
}

func readSource(fileName string) (string, error) {
	if fileName != "" {
		data, err := os.ReadFile(fileName)
		if err != nil {
			return "", pkgerrors.Wrapf(err, "reading %s", fileName)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", pkgerrors.Wrap(err, "reading stdin")
	}
	return string(data), nil
}

// reportError renders the diagnostic against the file it came from; an error
// raised inside an imported module is rendered against that module's source.
func reportError(fileName, sourceCode string, cerr *diagnostics.Error) {
	displayName := fileName
	if displayName == "" {
		displayName = "<stdin>"
	}

	if cerr.File != "" && cerr.File != fileName {
		if data, err := os.ReadFile(cerr.File); err == nil {
			diagnostics.Emit(cerr.File, string(data), cerr)
			return
		}
	}

	diagnostics.Emit(displayName, sourceCode, cerr)
}

// runToolchain pipes the IR to the native toolchain on stdin. The toolchain
// writes to a uniquely named scratch file which is moved into place on
// success, so a failing invocation never clobbers a previous artifact.
func runToolchain(cfg *config.Config, ir, outputPath string) error {
	checkToolchainVersion(cfg.Toolchain.Command)

	scratch := filepath.Join(filepath.Dir(outputPath), fmt.Sprintf(".bolt-%s.tmp", uuid.NewString()))
	defer os.Remove(scratch)

	args := append(append([]string(nil), cfg.Toolchain.Args...), "-o", scratch)

	cmd := exec.Command(cfg.Toolchain.Command, args...)
	cmd.Stdin = strings.NewReader(ir)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return pkgerrors.Wrapf(err, "%s failed", cfg.Toolchain.Command)
	}

	if err := os.Rename(scratch, outputPath); err != nil {
		return pkgerrors.Wrap(err, "moving output into place")
	}
	return nil
}

// checkToolchainVersion warns when the toolchain looks older than supported.
func checkToolchainVersion(command string) {
	out, err := exec.Command(command, "--version").Output()
	if err != nil {
		return
	}

	lines := strings.Split(string(out), "\n")
	if len(lines) == 0 {
		return
	}
	fields := strings.Fields(lines[0])
	for _, field := range fields {
		major, _, found := strings.Cut(field, ".")
		if !found {
			continue
		}
		version, err := strconv.Atoi(major)
		if err != nil {
			continue
		}
		if version < config.DefaultToolchainVersionReq {
			fmt.Fprintf(os.Stderr, "WARN: %s version %s might not be supported\n", command, field)
		}
		return
	}
}
