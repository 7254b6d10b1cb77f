// Package types holds the data-type model of the compiler: primitives,
// pointers, fixed-size arrays, generic placeholders and user-defined classes,
// together with the per-type trait records used for operator dispatch.
//
// The platform integer is int64: the source keyword `int` is an alias for
// `int64` everywhere.
package types

import (
	"fmt"
	"strings"
)

// DataType is the interface over every type the language can express.
type DataType interface {
	// String returns the display name, e.g. "*int64" or "List<int64>".
	String() string
	// InternalName returns the mangled program-table key, e.g. "ptr-int64"
	// or "List--int64".
	InternalName() string
	// Equal compares structurally; generics compare by name, classes by
	// display name and field list.
	Equal(other DataType) bool
	// IsGeneric reports whether the type contains a generic placeholder.
	IsGeneric() bool
	// Size returns the size in bytes.
	Size() int
	// Clone returns a deep copy.
	Clone() DataType
}

// Primitive covers the built-in scalar types plus void and the first-class
// type value consumed by size_of.
type Primitive int

const (
	Int8 Primitive = iota
	Int16
	Int32
	Int64
	Float
	Boolean
	None
	TypeValue
)

// PlatformInt is the integer type the source keyword `int` denotes.
func PlatformInt() DataType { return Int64 }

func (p Primitive) String() string {
	switch p {
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Float:
		return "float"
	case Boolean:
		return "bool"
	case None:
		return "void"
	case TypeValue:
		return "type"
	}
	return "unknown"
}

func (p Primitive) InternalName() string { return p.String() }

func (p Primitive) Equal(other DataType) bool {
	o, ok := other.(Primitive)
	return ok && o == p
}

func (p Primitive) IsGeneric() bool { return false }

func (p Primitive) Size() int {
	switch p {
	case Int8, Boolean:
		return 1
	case Int16:
		return 2
	case Int32:
		return 4
	case Int64, TypeValue:
		return 8
	case Float:
		return 4
	}
	return 0
}

func (p Primitive) Clone() DataType { return p }

// FromName resolves a primitive type name. `int` aliases the platform int.
func FromName(name string) (DataType, bool) {
	switch name {
	case "int8":
		return Int8, true
	case "int16":
		return Int16, true
	case "int32":
		return Int32, true
	case "int64", "int":
		return Int64, true
	case "float":
		return Float, true
	case "bool":
		return Boolean, true
	case "void":
		return None, true
	}
	return nil, false
}

// Pointer is a typed pointer.
type Pointer struct {
	Elem DataType
}

func NewPointer(elem DataType) Pointer { return Pointer{Elem: elem} }

func (p Pointer) String() string       { return "*" + p.Elem.String() }
func (p Pointer) InternalName() string { return "ptr-" + p.Elem.InternalName() }

func (p Pointer) Equal(other DataType) bool {
	o, ok := other.(Pointer)
	return ok && p.Elem.Equal(o.Elem)
}

func (p Pointer) IsGeneric() bool { return p.Elem.IsGeneric() }
func (p Pointer) Size() int       { return 8 }
func (p Pointer) Clone() DataType { return Pointer{Elem: p.Elem.Clone()} }

// Array is a fixed-length array.
type Array struct {
	Elem DataType
	Len  int
}

func (a Array) String() string       { return fmt.Sprintf("[%s; %d]", a.Elem, a.Len) }
func (a Array) InternalName() string { return a.String() }

func (a Array) Equal(other DataType) bool {
	o, ok := other.(Array)
	return ok && a.Len == o.Len && a.Elem.Equal(o.Elem)
}

func (a Array) IsGeneric() bool { return a.Elem.IsGeneric() }
func (a Array) Size() int       { return a.Elem.Size() * a.Len }
func (a Array) Clone() DataType { return Array{Elem: a.Elem.Clone(), Len: a.Len} }

// Generic is an in-scope generic placeholder, equal by name.
type Generic struct {
	Name string
}

func (g Generic) String() string       { return g.Name }
func (g Generic) InternalName() string { return g.Name }

func (g Generic) Equal(other DataType) bool {
	o, ok := other.(Generic)
	return ok && o.Name == g.Name
}

func (g Generic) IsGeneric() bool { return true }
func (g Generic) Size() int       { return 8 }
func (g Generic) Clone() DataType { return g }

// Field is a named class field.
type Field struct {
	Name string
	Type DataType
}

// CustomType is a user-defined aggregate. A generic template keeps an
// instantiation cache in Subtypes, keyed by the joined internal names of the
// concrete argument types, so each specialisation exists exactly once.
type CustomType struct {
	DisplayName string
	Name        string
	Fields      []Field
	Generics    []string // declared generic parameter names, in order
	SubtypeOf   string   // template name if this is a specialisation
	GenericDecl bool     // declared with <...>, even if unused in fields
	Subtypes    map[string]*CustomType
	SubtypeKeys []string // insertion order of Subtypes
}

func (c *CustomType) String() string       { return c.DisplayName }
func (c *CustomType) InternalName() string { return c.Name }

func (c *CustomType) Equal(other DataType) bool {
	o, ok := other.(*CustomType)
	if !ok || o.DisplayName != c.DisplayName || len(o.Fields) != len(c.Fields) {
		return false
	}
	for i := range c.Fields {
		if c.Fields[i].Name != o.Fields[i].Name || !c.Fields[i].Type.Equal(o.Fields[i].Type) {
			return false
		}
	}
	return true
}

func (c *CustomType) IsGeneric() bool {
	if c.GenericDecl {
		return true
	}
	for _, f := range c.Fields {
		if f.Type.IsGeneric() {
			return true
		}
	}
	return false
}

func (c *CustomType) Size() int {
	total := 0
	for _, f := range c.Fields {
		total += f.Type.Size()
	}
	return total
}

func (c *CustomType) Clone() DataType {
	out := &CustomType{
		DisplayName: c.DisplayName,
		Name:        c.Name,
		Fields:      make([]Field, len(c.Fields)),
		Generics:    append([]string(nil), c.Generics...),
		SubtypeOf:   c.SubtypeOf,
		GenericDecl: c.GenericDecl,
		Subtypes:    c.Subtypes,
		SubtypeKeys: c.SubtypeKeys,
	}
	for i, f := range c.Fields {
		out.Fields[i] = Field{Name: f.Name, Type: f.Type.Clone()}
	}
	return out
}

// CacheSubtype records a specialisation under its argument tuple.
func (c *CustomType) CacheSubtype(key string, sub *CustomType) {
	if c.Subtypes == nil {
		c.Subtypes = make(map[string]*CustomType)
	}
	if _, ok := c.Subtypes[key]; !ok {
		c.SubtypeKeys = append(c.SubtypeKeys, key)
	}
	c.Subtypes[key] = sub
}

func (c *CustomType) CachedSubtype(key string) (*CustomType, bool) {
	sub, ok := c.Subtypes[key]
	return sub, ok
}

// SubtypeKey builds the instantiation-cache key for an argument tuple.
func SubtypeKey(args []DataType) string {
	names := make([]string, len(args))
	for i, t := range args {
		names[i] = t.InternalName()
	}
	return strings.Join(names, ".")
}

// MangledName joins a template name with its concrete arguments, e.g.
// List + [int64] -> "List--int64".
func MangledName(template string, args []DataType) string {
	return template + "--" + SubtypeKey(args)
}

// DisplayNameWith renders the human form, e.g. "List<int64>".
func DisplayNameWith(template string, args []DataType) string {
	names := make([]string, len(args))
	for i, t := range args {
		names[i] = t.String()
	}
	return fmt.Sprintf("%s<%s>", template, strings.Join(names, ", "))
}

// GenericNames collects the generic placeholder names of t in first-seen
// order.
func GenericNames(t DataType) []string {
	var out []string
	seen := make(map[string]bool)
	var walk func(DataType)
	walk = func(t DataType) {
		switch tt := t.(type) {
		case Generic:
			if !seen[tt.Name] {
				seen[tt.Name] = true
				out = append(out, tt.Name)
			}
		case Pointer:
			walk(tt.Elem)
		case Array:
			walk(tt.Elem)
		case *CustomType:
			for _, g := range tt.Generics {
				if !seen[g] {
					seen[g] = true
					out = append(out, g)
				}
			}
			for _, f := range tt.Fields {
				walk(f.Type)
			}
		}
	}
	walk(t)
	return out
}

// Equal is a nil-tolerant structural comparison.
func Equal(a, b DataType) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}

func IsInteger(t DataType) bool {
	p, ok := t.(Primitive)
	return ok && (p == Int8 || p == Int16 || p == Int32 || p == Int64)
}

func IsFloat(t DataType) bool {
	p, ok := t.(Primitive)
	return ok && p == Float
}

func IsBoolean(t DataType) bool {
	p, ok := t.(Primitive)
	return ok && p == Boolean
}

func IsNone(t DataType) bool {
	p, ok := t.(Primitive)
	return ok && p == None
}

func IsPointer(t DataType) bool {
	_, ok := t.(Pointer)
	return ok
}

// CanBeConvertedTo reports whether a `v as T` cast from one type to the other
// is permitted: pointer to pointer, pointer and the platform int in either
// direction, any integer/boolean pair, and integer/float in either direction.
func CanBeConvertedTo(from, to DataType) bool {
	switch {
	case IsPointer(from) && IsPointer(to):
		return true
	case IsPointer(from) && Equal(to, PlatformInt()):
		return true
	case Equal(from, PlatformInt()) && IsPointer(to):
		return true
	case (IsInteger(from) || IsBoolean(from)) && (IsInteger(to) || IsBoolean(to)):
		return true
	case IsInteger(from) && IsFloat(to):
		return true
	case IsFloat(from) && IsInteger(to):
		return true
	}
	return false
}
