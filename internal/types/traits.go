package types

// Trait is a named operator or indexing role a type can implement through a
// method with the matching short name.
type Trait int

const (
	TraitAdd Trait = iota
	TraitSub
	TraitMul
	TraitDiv
	TraitModulo
	TraitIndex
	TraitNegate
	TraitBooleanNot
	TraitEqual
	TraitNotEqual
	TraitLessThan
	TraitLessThanOrEqual
	TraitGreaterThan
	TraitGreaterThanOrEqual
	TraitAnd
	TraitOr
	TraitCast
)

func (t Trait) String() string {
	switch t {
	case TraitAdd:
		return "Add"
	case TraitSub:
		return "Subtract"
	case TraitMul:
		return "Multiply"
	case TraitDiv:
		return "Divide"
	case TraitModulo:
		return "Modulo"
	case TraitIndex:
		return "Index"
	case TraitNegate:
		return "Negate"
	case TraitBooleanNot:
		return "BooleanNot"
	case TraitEqual:
		return "Equal"
	case TraitNotEqual:
		return "NotEqual"
	case TraitLessThan:
		return "LessThan"
	case TraitLessThanOrEqual:
		return "LessThanOrEqual"
	case TraitGreaterThan:
		return "GreaterThan"
	case TraitGreaterThanOrEqual:
		return "GreaterThanOrEqual"
	case TraitAnd:
		return "And"
	case TraitOr:
		return "Or"
	case TraitCast:
		return "Cast"
	}
	return "unknown"
}

// TraitNames maps the short method name a source program uses to the trait it
// implements.
var TraitNames = map[string]Trait{
	"add": TraitAdd,
	"sub": TraitSub,
	"mul": TraitMul,
	"div": TraitDiv,
	"mod": TraitModulo,
	"idx": TraitIndex,
	"neg": TraitNegate,
	"not": TraitBooleanNot,
	"eq":  TraitEqual,
	"ne":  TraitNotEqual,
	"lt":  TraitLessThan,
	"lte": TraitLessThanOrEqual,
	"gt":  TraitGreaterThan,
	"gte": TraitGreaterThanOrEqual,
	"and": TraitAnd,
	"or":  TraitOr,
	"as":  TraitCast,
}

// MethodName returns the short source-level name of the trait.
func (t Trait) MethodName() string {
	for name, trait := range TraitNames {
		if trait == t {
			return name
		}
	}
	return ""
}

// ParamLen is the number of parameters excluding self: 1 for binary, index
// and cast traits, 0 for the unary ones.
func (t Trait) ParamLen() int {
	switch t {
	case TraitNegate, TraitBooleanNot:
		return 0
	}
	return 1
}

// TraitRecord binds a trait to a parameter signature (self included), the
// override function implementing it (empty for defaults) and its return type.
type TraitRecord struct {
	Trait    Trait
	Params   []DataType
	Override string
	Return   DataType
}

func (r TraitRecord) matches(trait Trait, params []DataType) bool {
	if r.Trait != trait || len(r.Params) != len(params) {
		return false
	}
	for i := range params {
		if !r.Params[i].Equal(params[i]) {
			return false
		}
	}
	return true
}

// DataTypeInfo is the per-type record of method names and implemented traits.
type DataTypeInfo struct {
	Methods    []string
	ParentType DataType
	Traits     []TraitRecord
}

func NewDataTypeInfo(parent DataType) *DataTypeInfo {
	return &DataTypeInfo{ParentType: parent}
}

func (i *DataTypeInfo) HasMethod(name string) bool {
	for _, m := range i.Methods {
		if m == name {
			return true
		}
	}
	return false
}

// ImplementsTrait checks the default implementations first, then the user
// records.
func (i *DataTypeInfo) ImplementsTrait(trait Trait, params []DataType) bool {
	for _, r := range defaultImplementations(i.ParentType) {
		if r.matches(trait, params) {
			return true
		}
	}
	for _, r := range i.Traits {
		if r.matches(trait, params) {
			return true
		}
	}
	return false
}

// TraitOverrideName returns the override function of a user trait record, if
// any.
func (i *DataTypeInfo) TraitOverrideName(trait Trait, params []DataType) (string, bool) {
	for _, r := range i.Traits {
		if r.matches(trait, params) && r.Override != "" {
			return r.Override, true
		}
	}
	return "", false
}

// TraitReturnType resolves the result type of a trait application, user
// records first, defaults second.
func (i *DataTypeInfo) TraitReturnType(trait Trait, params []DataType) (DataType, bool) {
	for _, r := range i.Traits {
		if r.matches(trait, params) {
			return r.Return, true
		}
	}
	for _, r := range defaultImplementations(i.ParentType) {
		if r.matches(trait, params) {
			return r.Return, true
		}
	}
	return nil, false
}

// AddTrait appends a record; it fails when an equal (trait, params) record
// already exists.
func (i *DataTypeInfo) AddTrait(record TraitRecord) bool {
	for _, r := range i.Traits {
		if r.matches(record.Trait, record.Params) {
			return false
		}
	}
	i.Traits = append(i.Traits, record)
	return true
}

// defaultImplementations yields the built-in trait records: arithmetic,
// comparison and negation for the numeric types, boolean algebra for bool,
// and indexing for arrays.
func defaultImplementations(t DataType) []TraitRecord {
	switch tt := t.(type) {
	case Primitive:
		switch tt {
		case Int8, Int16, Int32, Int64, Float:
			pair := []DataType{t, t}
			return []TraitRecord{
				{Trait: TraitAdd, Params: pair, Return: t},
				{Trait: TraitSub, Params: pair, Return: t},
				{Trait: TraitMul, Params: pair, Return: t},
				{Trait: TraitDiv, Params: pair, Return: t},
				{Trait: TraitModulo, Params: pair, Return: t},
				{Trait: TraitEqual, Params: pair, Return: Boolean},
				{Trait: TraitNotEqual, Params: pair, Return: Boolean},
				{Trait: TraitLessThan, Params: pair, Return: Boolean},
				{Trait: TraitLessThanOrEqual, Params: pair, Return: Boolean},
				{Trait: TraitGreaterThan, Params: pair, Return: Boolean},
				{Trait: TraitGreaterThanOrEqual, Params: pair, Return: Boolean},
				{Trait: TraitNegate, Params: []DataType{t}, Return: t},
				{Trait: TraitCast, Params: []DataType{t, Int8}, Return: Int8},
				{Trait: TraitCast, Params: []DataType{t, Int32}, Return: Int32},
				{Trait: TraitCast, Params: []DataType{t, Int64}, Return: Int64},
			}
		case Boolean:
			pair := []DataType{t, t}
			return []TraitRecord{
				{Trait: TraitEqual, Params: pair, Return: Boolean},
				{Trait: TraitNotEqual, Params: pair, Return: Boolean},
				{Trait: TraitAnd, Params: pair, Return: Boolean},
				{Trait: TraitOr, Params: pair, Return: Boolean},
				{Trait: TraitBooleanNot, Params: []DataType{t}, Return: Boolean},
			}
		}
	case Array:
		return []TraitRecord{
			{Trait: TraitIndex, Params: []DataType{t, Int64}, Return: tt.Elem},
		}
	}
	return nil
}
