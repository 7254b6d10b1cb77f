package parser

import (
	"os"
	"path/filepath"

	pkgerrors "github.com/pkg/errors"

	"github.com/bolt-lang/bolt/internal/ast"
	"github.com/bolt-lang/bolt/internal/diagnostics"
	"github.com/bolt-lang/bolt/internal/lexer"
	"github.com/bolt-lang/bolt/internal/position"
	"github.com/bolt-lang/bolt/internal/token"
)

// parseImport handles `import "path"`. The path resolves relative to the
// importing file (or the working directory for top-level input), is
// canonicalised, parsed at most once per compilation via the shared cache,
// and merged into the current program.
func (p *Parser) parseImport() *diagnostics.Error {
	if _, err := p.expectNext(token.IMPORT); err != nil {
		return err
	}

	nameTok, err := p.expectNext(token.STRING)
	if err != nil {
		return err
	}

	base := p.relativePath
	if base == "" {
		if cwd, werr := os.Getwd(); werr == nil {
			base = cwd
		}
	}
	path := filepath.Join(base, nameTok.Lexeme)

	dependency, err := p.parseDependency(path, nameTok.Lexeme, nameTok.Span)
	if err != nil {
		return err
	}

	return p.addDependency(dependency)
}

func (p *Parser) parseDependency(path, name string, span position.Span) (*ast.Program, *diagnostics.Error) {
	canonical, cerr := canonicalPath(path)
	if cerr != nil {
		return nil, diagnostics.FileNotFound(name, span)
	}

	if p.Program.OnImportStack(canonical) {
		return nil, diagnostics.CircularDependency(name, span)
	}

	if cached, ok := p.Program.DepCache.Get(canonical); ok {
		return cached, nil
	}

	p.Program.PushImport(canonical)
	defer p.Program.PopImport()

	data, rerr := os.ReadFile(canonical)
	if rerr != nil {
		return nil, diagnostics.FileNotFound(name, span)
	}
	code := string(data)

	tokens, lerr := lexer.Lex(code)
	if lerr != nil {
		return nil, lerr.WithFile(canonical)
	}

	nested := New(tokens).
		WithSourceCode(code).
		WithDependencyCache(p.Program.DepCache).
		WithImportStack(append([]string(nil), p.Program.ImportStack...)).
		WithRelativePath(filepath.Dir(canonical))

	program, perr := nested.Parse()
	if perr != nil {
		return nil, perr.WithFile(canonical)
	}

	p.Program.DepCache.Put(canonical, program)
	return program, nil
}

func canonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", pkgerrors.Wrap(err, "resolving import path")
	}
	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", pkgerrors.Wrapf(err, "canonicalising %s", abs)
	}
	return canonical, nil
}

// addDependency merges a parsed dependency into the current program.
// Functions of the same mangled name must be import-equal; their generic
// specialisations merge. Classes must be structurally equal. Type infos
// merge additively.
func (p *Parser) addDependency(dependency *ast.Program) *diagnostics.Error {
	for i := 0; i < dependency.Functions.Len(); i++ {
		name, fn := dependency.Functions.At(i)

		existing, ok := p.Program.Functions.Get(name)
		if !ok {
			p.Program.Functions.Set(name, fn)
			continue
		}

		if existing.ImportCompare(fn) || fn.IsBuiltin {
			for j := 0; j < fn.GenericSubtypes.Len(); j++ {
				key, subtype := fn.GenericSubtypes.At(j)
				if existingSub, ok := existing.GenericSubtypes.Get(key); ok {
					if existingSub.ImportCompare(subtype) {
						continue
					}
				}
				existing.GenericSubtypes.Set(key, subtype)
			}
			continue
		}

		return diagnostics.FunctionAlreadyExists(name, fn.DisplaySpan)
	}

	for i := 0; i < dependency.CustomTypes.Len(); i++ {
		name, entry := dependency.CustomTypes.At(i)

		if existing, ok := p.Program.CustomTypes.Get(name); ok {
			if existing.Type.Equal(entry.Type) {
				continue
			}
			return diagnostics.ClassAlreadyExists(name, entry.Span)
		}

		p.Program.CustomTypes.Set(name, entry)
	}

	for i := 0; i < dependency.DataTypes.Len(); i++ {
		name, info := dependency.DataTypes.At(i)

		existing, ok := p.Program.DataTypes.Get(name)
		if !ok {
			p.Program.DataTypes.Set(name, info)
			continue
		}
		if existing == info {
			// The same cached dependency merged again.
			continue
		}

		for _, method := range info.Methods {
			if !existing.HasMethod(method) {
				existing.Methods = append(existing.Methods, method)
			}
		}
		for _, record := range info.Traits {
			if !existing.AddTrait(record) {
				return diagnostics.MethodAlreadyExists(record.Trait.MethodName(), name, position.Span{})
			}
		}
	}

	return nil
}
