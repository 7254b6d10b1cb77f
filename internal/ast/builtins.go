package ast

import "github.com/bolt-lang/bolt/internal/types"

// SizeOfName is the built-in returning the byte size of a type value.
const SizeOfName = "size_of"

// registerBuiltins seeds a fresh program with the built-in functions. They
// are extern (no body) and flagged so the code generator lowers them inline.
func registerBuiltins(p *Program) {
	sizeOf := &Function{
		DisplayName: SizeOfName,
		Name:        SizeOfName,
		Params: []FunctionParam{
			{Name: "type", Type: types.TypeValue},
		},
		Body:            NewBlock(),
		ReturnType:      types.PlatformInt(),
		IsExtern:        true,
		IsBuiltin:       true,
		GenericSubtypes: NewOrderedMap[*Function](),
	}

	p.Functions.Set(sizeOf.Name, sizeOf)
}
