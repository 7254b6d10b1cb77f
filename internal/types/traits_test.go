package types

import "testing"

func TestTraitNamesCoverEveryTrait(t *testing.T) {
	seen := make(map[Trait]bool)
	for _, trait := range TraitNames {
		seen[trait] = true
	}
	for trait := TraitAdd; trait <= TraitCast; trait++ {
		if !seen[trait] {
			t.Errorf("trait %v has no source-level name", trait)
		}
		if trait.MethodName() == "" {
			t.Errorf("trait %v has no method name", trait)
		}
	}
}

func TestTraitParamLen(t *testing.T) {
	if TraitAdd.ParamLen() != 1 || TraitIndex.ParamLen() != 1 || TraitCast.ParamLen() != 1 {
		t.Error("binary/index/cast traits take one parameter besides self")
	}
	if TraitNegate.ParamLen() != 0 || TraitBooleanNot.ParamLen() != 0 {
		t.Error("unary traits take no parameters besides self")
	}
}

func TestDefaultImplementationsForIntegers(t *testing.T) {
	info := NewDataTypeInfo(Int64)
	pair := []DataType{Int64, Int64}

	if !info.ImplementsTrait(TraitAdd, pair) {
		t.Error("int64 should implement Add by default")
	}
	if !info.ImplementsTrait(TraitModulo, pair) {
		t.Error("int64 should implement Modulo by default")
	}

	ret, ok := info.TraitReturnType(TraitLessThan, pair)
	if !ok || !ret.Equal(Boolean) {
		t.Errorf("comparison should yield bool, got %v", ret)
	}

	ret, ok = info.TraitReturnType(TraitAdd, pair)
	if !ok || !ret.Equal(Int64) {
		t.Errorf("arithmetic should yield the operand type, got %v", ret)
	}

	if info.ImplementsTrait(TraitAdd, []DataType{Int64, Boolean}) {
		t.Error("mismatched operand types should not satisfy a default")
	}
	if info.ImplementsTrait(TraitAnd, pair) {
		t.Error("And is not defined for integers")
	}
}

func TestDefaultImplementationsForBool(t *testing.T) {
	info := NewDataTypeInfo(Boolean)
	pair := []DataType{Boolean, Boolean}

	if !info.ImplementsTrait(TraitAnd, pair) || !info.ImplementsTrait(TraitOr, pair) {
		t.Error("bool should implement And/Or by default")
	}
	if !info.ImplementsTrait(TraitBooleanNot, []DataType{Boolean}) {
		t.Error("bool should implement BooleanNot by default")
	}
	if info.ImplementsTrait(TraitAdd, pair) {
		t.Error("bool does not implement Add")
	}
}

func TestDefaultIndexForArrays(t *testing.T) {
	arr := Array{Elem: Float, Len: 4}
	info := NewDataTypeInfo(arr)

	params := []DataType{arr, Int64}
	if !info.ImplementsTrait(TraitIndex, params) {
		t.Error("arrays should implement Index with an int64 index")
	}
	ret, ok := info.TraitReturnType(TraitIndex, params)
	if !ok || !ret.Equal(Float) {
		t.Errorf("array indexing should yield the element type, got %v", ret)
	}

	if info.ImplementsTrait(TraitIndex, []DataType{arr, Float}) {
		t.Error("arrays do not index with float")
	}
}

func TestUserTraitRecords(t *testing.T) {
	foo := &CustomType{DisplayName: "Foo", Name: "Foo", Fields: []Field{{Name: "data", Type: Int64}}}
	info := NewDataTypeInfo(foo)

	record := TraitRecord{
		Trait:    TraitAdd,
		Params:   []DataType{foo, foo},
		Override: "Foo_Add_Foo_Foo",
		Return:   foo,
	}
	if !info.AddTrait(record) {
		t.Fatal("first trait record should insert")
	}
	if info.AddTrait(record) {
		t.Fatal("duplicate trait record should be rejected")
	}

	if !info.ImplementsTrait(TraitAdd, []DataType{foo, foo}) {
		t.Error("user record should satisfy the trait")
	}
	name, ok := info.TraitOverrideName(TraitAdd, []DataType{foo, foo})
	if !ok || name != "Foo_Add_Foo_Foo" {
		t.Errorf("override name = %q", name)
	}
	ret, ok := info.TraitReturnType(TraitAdd, []DataType{foo, foo})
	if !ok || !ret.Equal(foo) {
		t.Errorf("trait return type = %v", ret)
	}
}
