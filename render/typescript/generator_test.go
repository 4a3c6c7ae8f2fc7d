package typescript

import (
	"strings"
	"testing"

	"github.com/teranos/namedargs/classify"
	"github.com/teranos/namedargs/decl"
	"github.com/teranos/namedargs/emit"
	"github.com/teranos/namedargs/resolve"
)

func emitAll(t *testing.T, symbols decl.Symbols) []*emit.Unit {
	t.Helper()
	for _, cls := range symbols.Classes {
		decl.Link(cls)
	}
	var units []*emit.Unit
	for _, c := range classify.Symbols(symbols).Callables {
		u, err := emit.Emit(c)
		if err != nil {
			t.Fatalf("Emit: %v", err)
		}
		if u != nil {
			units = append(units, u)
		}
	}
	return units
}

func TestGenerateFile_TopLevelFunction(t *testing.T) {
	units := emitAll(t, decl.Symbols{Functions: []*decl.Function{{
		Name:    "move",
		Package: "com.example",
		Kind:    decl.FunctionTopLevel,
		Params: []decl.Parameter{
			{Name: "x", Type: decl.TypeExpr{Name: "kotlin.Int"}},
			{Name: "y", Type: decl.TypeExpr{Name: "kotlin.Int"}},
		},
	}}})
	if len(units) != 1 {
		t.Fatalf("expected 1 unit, got %d", len(units))
	}

	got, err := NewGenerator().GenerateFile(units[0])
	if err != nil {
		t.Fatalf("GenerateFile: %v", err)
	}

	want := `/* eslint-disable */
// Code generated by namedargs from com.example.move. DO NOT EDIT.
// Source package: com.example

export interface MoveArgs {
  readonly x: number;
  readonly y: number;
}

export declare function moveWrapper(args: MoveArgs): void;
`
	if got != want {
		t.Errorf("GenerateFile mismatch\n--- got ---\n%s\n--- want ---\n%s", got, want)
	}
}

func TestGenerateWrapper_MemberReceiver(t *testing.T) {
	units := emitAll(t, decl.Symbols{Classes: []*decl.Class{{
		Name:               "Box",
		Package:            "com.example",
		TypeParams:         []decl.TypeParameter{{Name: "T", Owner: decl.OwnerClass}},
		PrimaryConstructor: &decl.Function{Kind: decl.FunctionMember},
		Functions: []*decl.Function{{
			Name:       "scale",
			Kind:       decl.FunctionMember,
			Params:     []decl.Parameter{{Name: "factor", Type: decl.TypeExpr{Name: "kotlin.Double"}}},
			ReturnType: &decl.TypeExpr{Name: "kotlin.Double", Nullable: true},
		}},
	}}})
	if len(units) != 1 {
		t.Fatalf("expected 1 unit, got %d", len(units))
	}

	got := GenerateWrapper(units[0].Wrapper)
	want := "export declare function scaleBoxWrapper<T>(receiver: Box<T>, args: ScaleBoxArgs<T>): number | null;"
	if got != want {
		t.Errorf("GenerateWrapper = %q, want %q", got, want)
	}
}

func TestGenerateInterface_Bounds(t *testing.T) {
	c := emit.Carrier{
		Name: "SortArgs",
		TypeParams: []resolve.TypeParam{{
			Name:   "T",
			Bounds: []resolve.TypeRef{{Package: "kotlin", Name: "Comparable", Args: []resolve.TypeRef{{Name: "T", Variable: true}}}},
		}},
		Fields: []emit.Field{{
			Name: "items",
			Type: resolve.TypeRef{Package: "kotlin.collections", Name: "List", Args: []resolve.TypeRef{{Name: "T", Variable: true}}},
		}},
		Exported: true,
	}

	got := GenerateInterface(c)
	want := "export interface SortArgs<T extends Comparable<T>> {\n  readonly items: T[];\n}"
	if got != want {
		t.Errorf("GenerateInterface =\n%s\nwant\n%s", got, want)
	}
}

func TestTypeName(t *testing.T) {
	tv := resolve.TypeRef{Name: "T", Variable: true}
	str := resolve.TypeRef{Package: "kotlin", Name: "String"}

	tests := []struct {
		name string
		ref  resolve.TypeRef
		want string
	}{
		{"kotlin string", str, "string"},
		{"nullable", resolve.TypeRef{Package: "kotlin", Name: "Int", Nullable: true}, "number | null"},
		{"variable", tv, "T"},
		{"go pointer", resolve.TypeRef{Name: resolve.PointerName, Args: []resolve.TypeRef{{Name: "int"}}}, "number | null"},
		{"go slice of pointers", resolve.TypeRef{Name: resolve.SliceName, Args: []resolve.TypeRef{{Name: resolve.PointerName, Args: []resolve.TypeRef{{Name: "string"}}}}}, "(string | null)[]"},
		{"go map", resolve.TypeRef{Name: resolve.MapName, Args: []resolve.TypeRef{{Name: "string"}, {Name: "any"}}}, "Record<string, unknown>"},
		{"kotlin map", resolve.TypeRef{Package: "kotlin.collections", Name: "Map", Args: []resolve.TypeRef{str, tv}}, "Record<string, T>"},
		{"function", resolve.TypeRef{Package: "kotlin", Name: "Function1", Args: []resolve.TypeRef{tv, str}}, "(p0: T) => string"},
		{"unknown nested", resolve.TypeRef{Package: "com.example", Name: "Outer.Inner", Args: []resolve.TypeRef{tv}}, "Inner<T>"},
		{"go named", resolve.TypeRef{Package: "example.com/geo", Name: "Point"}, "Point"},
		{"time", resolve.TypeRef{Package: "time", Name: "Time"}, "string"},
		{"go func", goFunc(tuple(resolve.TypeRef{Name: "bool"}), resolve.TypeRef{Name: "string"}, resolve.TypeRef{Name: "int"}), "(p0: string, p1: number) => boolean"},
		{"nullable go func", nullableRef(goFunc(tuple(), resolve.TypeRef{Name: "int"})), "((p0: number) => void) | null"},
		{"go results", tuple(resolve.TypeRef{Name: "int"}, resolve.TypeRef{Name: "error"}), "[number, Error | null]"},
		{"single result", tuple(str), "string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TypeName(tt.ref); got != tt.want {
				t.Errorf("TypeName(%s) = %q, want %q", tt.ref, got, tt.want)
			}
		})
	}
}

func TestGenerateFile_ConstructorReturnsConstructed(t *testing.T) {
	units := emitAll(t, decl.Symbols{Classes: []*decl.Class{{
		Name:       "Point",
		Package:    "com.example",
		TypeParams: []decl.TypeParameter{{Name: "T", Owner: decl.OwnerClass}},
		PrimaryConstructor: &decl.Function{
			Kind:   decl.FunctionMember,
			Params: []decl.Parameter{{Name: "x", Type: decl.Var("T")}, {Name: "y", Type: decl.Var("T")}},
		},
	}}})
	if len(units) != 1 {
		t.Fatalf("expected 1 unit, got %d", len(units))
	}

	got, err := NewGenerator().GenerateFile(units[0])
	if err != nil {
		t.Fatalf("GenerateFile: %v", err)
	}
	if !strings.Contains(got, "export declare function createPointWrapper<T>(args: PointConstructorArgs<T>): Point<T>;") {
		t.Errorf("unexpected wrapper declaration\n%s", got)
	}
}

func goFunc(results resolve.TypeRef, params ...resolve.TypeRef) resolve.TypeRef {
	return resolve.TypeRef{Name: resolve.FuncName, Args: append(params, results)}
}

func tuple(args ...resolve.TypeRef) resolve.TypeRef {
	return resolve.TypeRef{Name: resolve.TupleName, Args: args}
}

func nullableRef(ref resolve.TypeRef) resolve.TypeRef {
	ref.Nullable = true
	return ref
}
