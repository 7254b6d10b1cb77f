package types

import "testing"

func TestDisplayAndInternalNames(t *testing.T) {
	cases := []struct {
		dataType DataType
		display  string
		internal string
	}{
		{Int8, "int8", "int8"},
		{Int64, "int64", "int64"},
		{Float, "float", "float"},
		{Boolean, "bool", "bool"},
		{None, "void", "void"},
		{NewPointer(Int64), "*int64", "ptr-int64"},
		{NewPointer(NewPointer(Int8)), "**int8", "ptr-ptr-int8"},
		{Array{Elem: Int64, Len: 3}, "[int64; 3]", "[int64; 3]"},
		{Generic{Name: "T"}, "T", "T"},
	}

	for _, tc := range cases {
		if got := tc.dataType.String(); got != tc.display {
			t.Errorf("String() = %q, want %q", got, tc.display)
		}
		if got := tc.dataType.InternalName(); got != tc.internal {
			t.Errorf("InternalName() = %q, want %q", got, tc.internal)
		}
	}
}

func TestFromName(t *testing.T) {
	if got, ok := FromName("int"); !ok || !got.Equal(Int64) {
		t.Errorf("int should alias int64, got %v", got)
	}
	if _, ok := FromName("string"); ok {
		t.Error("string should not resolve")
	}
}

func TestStructuralEquality(t *testing.T) {
	if !NewPointer(Int64).Equal(NewPointer(Int64)) {
		t.Error("pointer equality by pointee failed")
	}
	if NewPointer(Int64).Equal(NewPointer(Int32)) {
		t.Error("pointers with different pointees compared equal")
	}
	if !(Array{Elem: Int8, Len: 2}).Equal(Array{Elem: Int8, Len: 2}) {
		t.Error("array equality failed")
	}
	if (Array{Elem: Int8, Len: 2}).Equal(Array{Elem: Int8, Len: 3}) {
		t.Error("arrays with different lengths compared equal")
	}
	if !(Generic{Name: "T"}).Equal(Generic{Name: "T"}) {
		t.Error("generic equality by name failed")
	}
	if (Generic{Name: "T"}).Equal(Generic{Name: "U"}) {
		t.Error("distinct generics compared equal")
	}
}

func TestCustomEquality(t *testing.T) {
	a := &CustomType{
		DisplayName: "Foo",
		Name:        "Foo",
		Fields:      []Field{{Name: "data", Type: Int64}},
	}
	b := &CustomType{
		DisplayName: "Foo",
		Name:        "Foo",
		Fields:      []Field{{Name: "data", Type: Int64}},
	}
	c := &CustomType{
		DisplayName: "Foo",
		Name:        "Foo",
		Fields:      []Field{{Name: "data", Type: Boolean}},
	}

	if !a.Equal(b) {
		t.Error("identical classes compared unequal")
	}
	if a.Equal(c) {
		t.Error("classes with different field types compared equal")
	}
}

func TestSizes(t *testing.T) {
	cases := []struct {
		dataType DataType
		want     int
	}{
		{Int8, 1},
		{Int16, 2},
		{Int32, 4},
		{Int64, 8},
		{Float, 4},
		{Boolean, 1},
		{None, 0},
		{NewPointer(Int8), 8},
		{Array{Elem: Int32, Len: 4}, 16},
		{&CustomType{Fields: []Field{{Name: "a", Type: Int64}, {Name: "b", Type: Boolean}}}, 9},
	}

	for _, tc := range cases {
		if got := tc.dataType.Size(); got != tc.want {
			t.Errorf("Size(%s) = %d, want %d", tc.dataType, got, tc.want)
		}
	}
}

func TestIsGeneric(t *testing.T) {
	if Int64.IsGeneric() {
		t.Error("int64 is not generic")
	}
	if !NewPointer(Generic{Name: "T"}).IsGeneric() {
		t.Error("pointer to generic is generic")
	}

	declared := &CustomType{Name: "Foo", GenericDecl: true, Fields: []Field{{Name: "x", Type: Int64}}}
	if !declared.IsGeneric() {
		t.Error("class with declared generic parameter is generic even when unused")
	}

	structural := &CustomType{Name: "Bar", Fields: []Field{{Name: "x", Type: Generic{Name: "T"}}}}
	if !structural.IsGeneric() {
		t.Error("class with generic field is generic")
	}
}

func TestMangling(t *testing.T) {
	if got := MangledName("List", []DataType{Int64}); got != "List--int64" {
		t.Errorf("MangledName = %q", got)
	}
	if got := DisplayNameWith("List", []DataType{Int64}); got != "List<int64>" {
		t.Errorf("DisplayNameWith = %q", got)
	}

	nested := &CustomType{DisplayName: "List<int64>", Name: "List--int64"}
	if got := MangledName("List", []DataType{nested}); got != "List--List--int64" {
		t.Errorf("nested MangledName = %q", got)
	}
}

func TestCanBeConvertedTo(t *testing.T) {
	cases := []struct {
		from, to DataType
		want     bool
	}{
		{NewPointer(Int8), NewPointer(Int64), true},
		{NewPointer(Int8), Int64, true},
		{Int64, NewPointer(Int8), true},
		{Int32, NewPointer(Int8), false},
		{NewPointer(Int8), Int32, false},
		{Int8, Int64, true},
		{Int64, Int8, true},
		{Boolean, Int64, true},
		{Int64, Boolean, true},
		{Int64, Float, true},
		{Float, Int64, true},
		{Boolean, Float, false},
		{Float, Boolean, false},
		{Float, NewPointer(Float), false},
	}

	for _, tc := range cases {
		if got := CanBeConvertedTo(tc.from, tc.to); got != tc.want {
			t.Errorf("CanBeConvertedTo(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestGenericNames(t *testing.T) {
	tt := NewPointer(Generic{Name: "T"})
	if got := GenericNames(tt); len(got) != 1 || got[0] != "T" {
		t.Errorf("GenericNames = %v", got)
	}

	multi := &CustomType{
		Name:     "Pair",
		Generics: []string{"T", "U"},
		Fields: []Field{
			{Name: "a", Type: Generic{Name: "T"}},
			{Name: "b", Type: Generic{Name: "U"}},
		},
	}
	if got := GenericNames(multi); len(got) != 2 || got[0] != "T" || got[1] != "U" {
		t.Errorf("GenericNames = %v", got)
	}
}
