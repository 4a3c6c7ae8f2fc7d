package golang

import (
	"strings"
	"testing"

	"github.com/teranos/namedargs/classify"
	"github.com/teranos/namedargs/decl"
	"github.com/teranos/namedargs/emit"
)

const geo = "example.com/geo"

func named(name string, args ...decl.TypeExpr) decl.TypeExpr {
	return decl.TypeExpr{Name: name, Package: geo, Args: args}
}

func ptr(t decl.TypeExpr) decl.TypeExpr {
	return decl.TypeExpr{Name: "*", Args: []decl.TypeExpr{t}}
}

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

func generateOne(t *testing.T, symbols decl.Symbols) string {
	t.Helper()
	units := emitAll(t, symbols)
	if len(units) != 1 {
		t.Fatalf("expected 1 unit, got %d", len(units))
	}
	out, err := NewGenerator().GenerateFile(units[0])
	if err != nil {
		t.Fatalf("GenerateFile: %v", err)
	}
	return out
}

func TestGenerateFile_Function(t *testing.T) {
	got := generateOne(t, decl.Symbols{Functions: []*decl.Function{{
		Name:    "Move",
		Package: geo,
		Kind:    decl.FunctionTopLevel,
		Params: []decl.Parameter{
			{Name: "x", Type: decl.TypeExpr{Name: "int"}},
			{Name: "y", Type: decl.TypeExpr{Name: "int"}},
		},
	}}})

	want := "// Code generated by namedargs from example.com/geo.Move. DO NOT EDIT.\n" +
		"\n" +
		"package geo\n" +
		"\n" +
		"// MoveArgs holds the arguments of Move by name.\n" +
		"type MoveArgs struct {\n" +
		"\tX int `json:\"x\"`\n" +
		"\tY int `json:\"y\"`\n" +
		"}\n" +
		"\n" +
		"// MoveWrapper calls Move with the fields of args.\n" +
		"func MoveWrapper(args MoveArgs) {\n" +
		"\tMove(args.X, args.Y)\n" +
		"}\n"
	if got != want {
		t.Errorf("GenerateFile mismatch\n--- got ---\n%s\n--- want ---\n%s", got, want)
	}
}

func TestGenerateFile_GenericConstructor(t *testing.T) {
	got := generateOne(t, decl.Symbols{Classes: []*decl.Class{{
		Name:       "Point",
		Package:    geo,
		TypeParams: []decl.TypeParameter{{Name: "T", Owner: decl.OwnerClass}},
		PrimaryConstructor: &decl.Function{
			Name:       "NewPoint",
			Kind:       decl.FunctionMember,
			Params:     []decl.Parameter{{Name: "x", Type: decl.Var("T")}, {Name: "y", Type: decl.Var("T")}},
			ReturnType: ptrOf(named("Point", decl.Var("T"))),
		},
	}}})

	for _, want := range []string{
		"type PointConstructorArgs[T any] struct {",
		"func CreatePointWrapper[T any](args PointConstructorArgs[T]) *Point[T] {\n\treturn NewPoint[T](args.X, args.Y)\n}",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q\n%s", want, got)
		}
	}
}

func TestGenerateFile_ConstructorTypeArgsNotInferable(t *testing.T) {
	got := generateOne(t, decl.Symbols{Classes: []*decl.Class{{
		Name:       "Stack",
		Package:    geo,
		TypeParams: []decl.TypeParameter{{Name: "T", Owner: decl.OwnerClass}},
		PrimaryConstructor: &decl.Function{
			Name:       "NewStack",
			Kind:       decl.FunctionMember,
			Params:     []decl.Parameter{{Name: "capacity", Type: decl.TypeExpr{Name: "int"}}},
			ReturnType: ptrOf(named("Stack", decl.Var("T"))),
		},
	}}})

	want := "func CreateStackWrapper[T any](args StackConstructorArgs[T]) *Stack[T] {\n\treturn NewStack[T](args.Capacity)\n}"
	if !strings.Contains(got, want) {
		t.Errorf("output missing %q\n%s", want, got)
	}
}

func TestGenerateFile_Method(t *testing.T) {
	got := generateOne(t, decl.Symbols{Classes: []*decl.Class{{
		Name:    "Box",
		Package: geo,
		PrimaryConstructor: &decl.Function{
			Name:       "NewBox",
			Kind:       decl.FunctionMember,
			ReturnType: ptrOf(named("Box")),
		},
		Functions: []*decl.Function{{
			Name:       "Scale",
			Kind:       decl.FunctionMember,
			Params:     []decl.Parameter{{Name: "factor", Type: decl.TypeExpr{Name: "float64"}}},
			ReturnType: &decl.TypeExpr{Name: "float64"},
		}},
	}}})

	want := "func (r *Box) ScaleBoxWrapper(args ScaleBoxArgs) float64 {\n\treturn r.Scale(args.Factor)\n}"
	if !strings.Contains(got, want) {
		t.Errorf("output missing %q\n%s", want, got)
	}
}

func TestGenerateFile_ImportsVariadicAndResults(t *testing.T) {
	got := generateOne(t, decl.Symbols{Functions: []*decl.Function{{
		Name:    "Sum",
		Package: geo,
		Kind:    decl.FunctionTopLevel,
		Params: []decl.Parameter{
			{Name: "timeout", Type: decl.TypeExpr{Name: "Duration", Package: "time"}},
			{Name: "a", Type: decl.TypeExpr{Name: "Options", Package: "example.com/a/util"}},
			{Name: "b", Type: ptr(decl.TypeExpr{Name: "Options", Package: "example.com/b/util"})},
			{Name: "values", Type: decl.TypeExpr{Name: "int"}, Variadic: true},
		},
		ReturnType: &decl.TypeExpr{Name: "()", Args: []decl.TypeExpr{{Name: "int"}, {Name: "error"}}},
	}}})

	for _, want := range []string{
		"\t\"example.com/a/util\"\n",
		"\tutil2 \"example.com/b/util\"\n",
		"\t\"time\"\n",
		"time.Duration",
		"util.Options",
		"*util2.Options",
		"[]int",
		"func SumWrapper(args SumArgs) (int, error) {\n\treturn Sum(args.Timeout, args.A, args.B, args.Values...)\n}",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q\n%s", want, got)
		}
	}
}

func TestGenerateFile_KotlinTypes(t *testing.T) {
	got := generateOne(t, decl.Symbols{Functions: []*decl.Function{{
		Name:    "tag",
		Package: "com.example",
		Kind:    decl.FunctionTopLevel,
		Params: []decl.Parameter{
			{Name: "names", Type: decl.TypeExpr{Name: "kotlin.collections.List", Args: []decl.TypeExpr{{Name: "kotlin.String"}}}},
			{Name: "limit", Type: decl.TypeExpr{Name: "kotlin.Int", Nullable: true}},
		},
	}}})

	for _, want := range []string{
		"package comexample\n",
		"[]string",
		"*int",
		"func TagWrapper(args TagArgs) {\n\ttag(args.Names, args.Limit)\n}",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q\n%s", want, got)
		}
	}
}

func TestRelPath(t *testing.T) {
	g := NewGenerator()
	got := g.RelPath(emit.Key{Package: geo, Name: "ScaleBoxArgs"})
	if got != "example.com/geo/scale_box_args.go" {
		t.Errorf("RelPath = %q", got)
	}
}

func TestPackageName(t *testing.T) {
	tests := map[string]string{
		"example.com/geo":     "geo",
		"gopkg.in/yaml.v3":    "yaml",
		"github.com/x/y/v2":   "y",
		"github.com/x/go-lib": "lib",
		"com.example":         "comexample",
		"":                    "generated",
	}
	for in, want := range tests {
		if got := PackageName(in); got != want {
			t.Errorf("PackageName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGenerateFile_InnerConstructorUnsupported(t *testing.T) {
	units := emitAll(t, decl.Symbols{Classes: []*decl.Class{{
		Name:               "Tree",
		Package:            geo,
		PrimaryConstructor: &decl.Function{Kind: decl.FunctionMember},
		Nested: []*decl.Class{{
			Name:  "Node",
			Inner: true,
			PrimaryConstructor: &decl.Function{
				Kind:   decl.FunctionMember,
				Params: []decl.Parameter{{Name: "label", Type: decl.TypeExpr{Name: "string"}}},
			},
		}},
	}}})
	if len(units) != 1 {
		t.Fatalf("expected 1 unit, got %d", len(units))
	}
	if _, err := NewGenerator().GenerateFile(units[0]); err == nil {
		t.Error("expected error for inner constructor")
	}
}

func ptrOf(t decl.TypeExpr) *decl.TypeExpr {
	p := ptr(t)
	return &p
}

func funcType(results []decl.TypeExpr, params ...decl.TypeExpr) decl.TypeExpr {
	return decl.TypeExpr{Name: "func", Args: append(params, decl.TypeExpr{Name: "()", Args: results})}
}

func TestGenerateFile_FuncTypes(t *testing.T) {
	got := generateOne(t, decl.Symbols{Functions: []*decl.Function{{
		Name:    "Filter",
		Package: geo,
		Kind:    decl.FunctionTopLevel,
		Params: []decl.Parameter{
			{Name: "keep", Type: funcType([]decl.TypeExpr{{Name: "bool"}}, decl.TypeExpr{Name: "string"}, decl.TypeExpr{Name: "int"})},
			{Name: "done", Type: funcType(nil)},
			{Name: "next", Type: funcType([]decl.TypeExpr{{Name: "int"}, {Name: "error"}})},
		},
	}}})

	for _, want := range []string{
		"func(string, int) bool",
		"Done func()",
		"func() (int, error)",
		"\tFilter(args.Keep, args.Done, args.Next)\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q\n%s", want, got)
		}
	}
	if strings.Contains(got, "return Filter") {
		t.Errorf("wrapper without a return type returns\n%s", got)
	}
}
