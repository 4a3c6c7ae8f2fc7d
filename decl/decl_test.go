package decl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeExprString(t *testing.T) {
	expr := TypeExpr{
		Name:    "Map",
		Package: "kotlin.collections",
		Args: []TypeExpr{
			{Name: "String", Package: "kotlin"},
			{Name: "T", Variable: true, Nullable: true},
		},
	}
	assert.Equal(t, "kotlin.collections.Map<kotlin.String, T?>", expr.String())
}

func TestLinkSetsBackReferences(t *testing.T) {
	inner := &Class{
		Name:               "Inner",
		Inner:              true,
		PrimaryConstructor: &Function{Kind: FunctionMember},
		Functions:          []*Function{{Name: "poke", Kind: FunctionMember}},
	}
	outer := &Class{
		Name:       "Outer",
		Package:    "com.example",
		TypeParams: []TypeParameter{{Name: "T", Owner: OwnerClass}},
		Nested:     []*Class{inner},
	}

	Link(outer)

	assert.Same(t, outer, inner.Outer)
	assert.Equal(t, "com.example", inner.Package)
	assert.Equal(t, "Outer.Inner", inner.NestedName())
	assert.Equal(t, "com.example.Outer.Inner", inner.QualifiedName())

	ctor := inner.PrimaryConstructor
	assert.True(t, ctor.Constructor)
	assert.Same(t, inner, ctor.Parent)
	require.NotNil(t, ctor.ReturnType)
	assert.Equal(t, "com.example.Outer.Inner", ctor.ReturnType.String())
	assert.Equal(t, "com.example.Outer.Inner.<init>", ctor.QualifiedName())

	poke := inner.Functions[0]
	assert.Same(t, inner, poke.Parent)
	assert.Equal(t, "com.example.Outer.Inner.poke", poke.QualifiedName())
}

func TestSelfType(t *testing.T) {
	c := &Class{
		Name:    "Pair",
		Package: "com.example",
		TypeParams: []TypeParameter{
			{Name: "A", Owner: OwnerClass},
			{Name: "B", Owner: OwnerClass},
		},
	}
	assert.Equal(t, "com.example.Pair<A, B>", c.SelfType().String())
}

func TestParseKinds(t *testing.T) {
	k, ok := ParseFunctionKind("Top-Level")
	assert.True(t, ok)
	assert.Equal(t, FunctionTopLevel, k)

	_, ok = ParseFunctionKind("extension")
	assert.False(t, ok)

	ck, ok := ParseClassKind("")
	assert.True(t, ok)
	assert.Equal(t, ClassPlain, ck)

	ck, ok = ParseClassKind("enum_class")
	assert.True(t, ok)
	assert.Equal(t, ClassEnum, ck)

	v, ok := ParseVisibility("")
	assert.True(t, ok)
	assert.Equal(t, Public, v)

	_, ok = ParseVisibility("friend")
	assert.False(t, ok)
}

func TestSymbolsAppend(t *testing.T) {
	var s Symbols
	s.Append(Symbols{Functions: []*Function{{Name: "a"}}})
	s.Append(Symbols{Functions: []*Function{{Name: "b"}}, Classes: []*Class{{Name: "C"}}})

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, "a", s.Functions[0].Name)
	assert.Equal(t, "b", s.Functions[1].Name)
}
