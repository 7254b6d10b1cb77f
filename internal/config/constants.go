package config

// Version is the current Bolt version.
// Set at build time via -ldflags or by editing this file.
var Version = "0.3.1"

// SourceFileExt is the canonical source extension.
const SourceFileExt = ".bolt"

// Default output names when no -o flag and no bolt.yaml override is present.
const (
	DefaultIRFileName         = "out.ll"
	DefaultExecutableFileName = "out.exe"
)

// Toolchain defaults. The toolchain reads IR on stdin and writes a native
// binary to the path given after -o.
const (
	DefaultToolchainCommand    = "clang"
	DefaultToolchainVersionReq = 16
)

var DefaultToolchainArgs = []string{"-x", "ir", "-"}
