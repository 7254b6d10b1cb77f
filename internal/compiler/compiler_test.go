package compiler_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/llir/llvm/asm"

	"github.com/bolt-lang/bolt/internal/compiler"
)

func TestCompileSimpleProgram(t *testing.T) {
	ir, err := compiler.Compile("def main() -> int64 { return 1; }", "")
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if !strings.Contains(ir, "define i64 @main()") {
		t.Errorf("IR missing main:\n%s", ir)
	}
}

func TestCompileErrors(t *testing.T) {
	cases := []struct {
		name   string
		source string
		wantID int
	}{
		{"missing main", "def helper() -> int64 { return 1; }", 12},
		{"operand mismatch", "def main() -> int64 { return 10 + true; }", 5},
		{"invalid cast", "def main() -> int64 { let a = true as float; return 0; }", 25},
		{"conditional return mismatch",
			"def main() -> int64 { let num = { if true { return 0; } }; return num; }", 30},
		{"illegal identifier", "def main() -> int64 { return 1foo; }", 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := compiler.Compile(tc.source, "")
			if err == nil {
				t.Fatalf("expected error %d", tc.wantID)
			}
			if err.ID != tc.wantID {
				t.Fatalf("error = %v, want id %d", err, tc.wantID)
			}
		})
	}
}

// The emitted IR of representative programs must be well-formed LLVM
// assembly.
func TestEmittedIRParses(t *testing.T) {
	cases := []struct {
		name   string
		source string
	}{
		{"return", "def main() -> int64 { return 1; }"},
		{"arithmetic", "def main() -> int64 { return -(10 + 5) * 2; }"},
		{"floats", "def main() -> float { return 1.5 + 2.5 / 2.0; }"},
		{"casts", "def main() -> int64 { let a = 1 as int8; return a as int64; }"},
		{"pointers", `
def main() -> int64 {
    let x = 42;
    let p = &x;
    return ~p;
}`},
		{"while", `
def main() -> int64 {
    let mut i = 0;
    while i < 10 {
        i = i + 1;
    }
    return i;
}`},
		{"branch mutation", `
def main() -> int64 {
    let mut x = 0;
    if x == 0 {
        x = 1;
    } else {
        x = 2;
    }
    return x;
}`},
		{"class and method", `
class Counter { value: int64, }
def get(self) for Counter -> int64 { return self.value; }
def main() -> int64 {
    let c = Counter { value: 3 };
    return c.get();
}`},
		{"arrays", `
def main() -> int64 {
    let xs = [1, 2, 3];
    return xs[1];
}`},
		{"generics", `
def id<T>(x: T) -> T { return x; }
def main() -> int64 { return id(42); }`},
		{"size_of", "def main() -> int64 { return size_of(int64); }"},
		{"block expression", `
def main() -> int64 {
    let bar = 10;
    let foo = { return bar + 1; };
    return foo;
}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ir, cerr := compiler.Compile(tc.source, "")
			if cerr != nil {
				t.Fatalf("compile failed: %v", cerr)
			}
			if _, err := asm.ParseString("main.ll", ir); err != nil {
				t.Fatalf("emitted IR does not parse: %v\n%s", err, ir)
			}
		})
	}
}

func TestImports(t *testing.T) {
	dir := t.TempDir()

	lib := "def helper() -> int64 { return 7; }"
	if err := os.WriteFile(filepath.Join(dir, "lib.bolt"), []byte(lib), 0o644); err != nil {
		t.Fatal(err)
	}

	mainSource := "import \"lib.bolt\"\ndef main() -> int64 { return helper(); }"
	mainPath := filepath.Join(dir, "main.bolt")
	if err := os.WriteFile(mainPath, []byte(mainSource), 0o644); err != nil {
		t.Fatal(err)
	}

	ir, cerr := compiler.Compile(mainSource, mainPath)
	if cerr != nil {
		t.Fatalf("compile failed: %v", cerr)
	}
	if !strings.Contains(ir, "define i64 @helper()") {
		t.Errorf("imported function missing:\n%s", ir)
	}
	if !strings.Contains(ir, "call i64 @helper()") {
		t.Errorf("call to imported function missing:\n%s", ir)
	}
}

func TestImportIdempotence(t *testing.T) {
	dir := t.TempDir()

	lib := "def helper() -> int64 { return 7; }"
	if err := os.WriteFile(filepath.Join(dir, "lib.bolt"), []byte(lib), 0o644); err != nil {
		t.Fatal(err)
	}

	once := "import \"lib.bolt\"\ndef main() -> int64 { return helper(); }"
	twice := "import \"lib.bolt\"\nimport \"lib.bolt\"\ndef main() -> int64 { return helper(); }"

	mainPath := filepath.Join(dir, "main.bolt")
	if err := os.WriteFile(mainPath, []byte(once), 0o644); err != nil {
		t.Fatal(err)
	}

	irOnce, cerr := compiler.Compile(once, mainPath)
	if cerr != nil {
		t.Fatalf("compile failed: %v", cerr)
	}
	irTwice, cerr := compiler.Compile(twice, mainPath)
	if cerr != nil {
		t.Fatalf("compile failed: %v", cerr)
	}
	if irOnce != irTwice {
		t.Error("importing the same file twice should equal importing it once")
	}
}

func TestImportFileNotFound(t *testing.T) {
	dir := t.TempDir()
	mainPath := filepath.Join(dir, "main.bolt")
	source := "import \"missing.bolt\"\ndef main() -> int64 { return 0; }"

	_, cerr := compiler.Compile(source, mainPath)
	if cerr == nil || cerr.ID != 31 {
		t.Fatalf("expected FileNotFound (31), got %v", cerr)
	}
}

func TestCircularImport(t *testing.T) {
	dir := t.TempDir()

	a := "import \"b.bolt\"\ndef fa() -> int64 { return 1; }"
	b := "import \"a.bolt\"\ndef fb() -> int64 { return 2; }"
	if err := os.WriteFile(filepath.Join(dir, "a.bolt"), []byte(a), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.bolt"), []byte(b), 0o644); err != nil {
		t.Fatal(err)
	}

	mainPath := filepath.Join(dir, "main.bolt")
	source := "import \"a.bolt\"\ndef main() -> int64 { return fa() + fb(); }"

	_, cerr := compiler.Compile(source, mainPath)
	if cerr == nil || cerr.ID != 38 {
		t.Fatalf("expected CircularDependency (38), got %v", cerr)
	}
}
