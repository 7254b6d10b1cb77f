package ast

import (
	"sync"

	"github.com/bolt-lang/bolt/internal/position"
	"github.com/bolt-lang/bolt/internal/types"
)

// Function is a compiled function, method or trait implementation. Name is
// the mangled program-table key; DisplayName is what the source wrote.
// Generic templates keep their specialisations in GenericSubtypes, keyed by
// the joined internal names of the concrete argument tuple.
type Function struct {
	DisplayName     string
	DisplaySpan     position.Span
	Name            string
	Params          []FunctionParam
	ParamsSpan      position.Span
	Body            *Block
	ReturnType      types.DataType
	ReturnSpan      position.Span
	IsExtern        bool
	MethodOf        types.DataType
	TraitOf         types.DataType
	GenericSubtypes *OrderedMap[*Function]
	IsBuiltin       bool
}

func NewFunction() *Function {
	return &Function{
		Body:            NewBlock(),
		ReturnType:      types.None,
		GenericSubtypes: NewOrderedMap[*Function](),
	}
}

func (f *Function) IsMethod() bool {
	return f.MethodOf != nil
}

// IsStaticMethod reports whether the method has no self receiver.
func (f *Function) IsStaticMethod() bool {
	if !f.IsMethod() {
		return false
	}
	if len(f.Params) == 0 {
		return true
	}
	return f.Params[0].Name != SelfParamName
}

func (f *Function) IsGeneric() bool {
	return f.Body != nil && len(f.Body.Generics) > 0
}

func (f *Function) GenericNames() []string {
	if f.Body == nil {
		return nil
	}
	return f.Body.Generics
}

// ImportCompare reports whether two functions are the same for module
// merging: equal signature and kind, bodies ignored.
func (f *Function) ImportCompare(other *Function) bool {
	if f.Name != other.Name ||
		f.IsExtern != other.IsExtern ||
		!types.Equal(f.ReturnType, other.ReturnType) ||
		!types.Equal(f.MethodOf, other.MethodOf) ||
		!types.Equal(f.TraitOf, other.TraitOf) ||
		len(f.Params) != len(other.Params) {
		return false
	}
	for i := range f.Params {
		if f.Params[i].Name != other.Params[i].Name ||
			!types.Equal(f.Params[i].Type, other.Params[i].Type) {
			return false
		}
	}
	return true
}

// FromBlock wraps an anonymous block into a synthetic function whose
// parameters are the block's captured variables.
func FromBlock(block *Block, name string) *Function {
	return &Function{
		Name:            name,
		Params:          append([]FunctionParam(nil), block.ClosureParams...),
		Body:            block,
		ReturnType:      block.ReturnType,
		GenericSubtypes: NewOrderedMap[*Function](),
	}
}

// ToCall builds a call expression to f with the given arguments.
func (f *Function) ToCall(args []*TypedExpr) *TypedExpr {
	return &TypedExpr{
		Expr: &CallExpr{Function: f, Args: args},
		Type: f.ReturnType,
	}
}

// SpannedType pairs a registered type with the span of its definition.
type SpannedType struct {
	Type types.DataType
	Span position.Span
}

// DependencyCache is the process-wide mapping from canonical import path to
// parsed program, shared between nested parser instances.
type DependencyCache struct {
	mu    sync.Mutex
	items map[string]*Program
}

func NewDependencyCache() *DependencyCache {
	return &DependencyCache{items: make(map[string]*Program)}
}

func (c *DependencyCache) Get(path string) (*Program, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.items[path]
	return p, ok
}

func (c *DependencyCache) Put(path string, program *Program) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[path] = program
}

// Program is the complete compilation unit: ordered tables of type infos,
// custom types and functions, the shared dependency cache, the import stack
// used for cycle detection, and the original source for comment emission.
type Program struct {
	DataTypes   *OrderedMap[*types.DataTypeInfo]
	CustomTypes *OrderedMap[*SpannedType]
	Functions   *OrderedMap[*Function]
	RequireMain bool
	DepCache    *DependencyCache
	ImportStack []string
	SourceCode  string
}

func NewProgram() *Program {
	p := &Program{
		DataTypes:   NewOrderedMap[*types.DataTypeInfo](),
		CustomTypes: NewOrderedMap[*SpannedType](),
		Functions:   NewOrderedMap[*Function](),
		DepCache:    NewDependencyCache(),
	}
	registerBuiltins(p)
	return p
}

// GetTypeInfo returns the info record of a type, or an empty default.
func (p *Program) GetTypeInfo(t types.DataType) *types.DataTypeInfo {
	if info, ok := p.DataTypes.Get(t.InternalName()); ok {
		return info
	}
	return types.NewDataTypeInfo(t)
}

// GetTypeInfoMut returns the info record, creating and registering it first
// if needed.
func (p *Program) GetTypeInfoMut(t types.DataType) *types.DataTypeInfo {
	if info, ok := p.DataTypes.Get(t.InternalName()); ok {
		return info
	}
	info := types.NewDataTypeInfo(t)
	p.DataTypes.Set(t.InternalName(), info)
	return info
}

// GetTraitFunction resolves the override function of a user trait record.
func (p *Program) GetTraitFunction(info *types.DataTypeInfo, trait types.Trait, params []types.DataType) *Function {
	name, ok := info.TraitOverrideName(trait, params)
	if !ok {
		return nil
	}
	fn, _ := p.Functions.Get(name)
	return fn
}

// OnImportStack reports whether path is currently being imported.
func (p *Program) OnImportStack(path string) bool {
	for _, entry := range p.ImportStack {
		if entry == path {
			return true
		}
	}
	return false
}

func (p *Program) PushImport(path string) {
	p.ImportStack = append(p.ImportStack, path)
}

func (p *Program) PopImport() {
	if len(p.ImportStack) > 0 {
		p.ImportStack = p.ImportStack[:len(p.ImportStack)-1]
	}
}
