package manifest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/namedargs/decl"
	"github.com/teranos/namedargs/emit"
	"github.com/teranos/namedargs/errors"
	"github.com/teranos/namedargs/processor"
	"github.com/teranos/namedargs/sink"
)

func kt(name string) decl.TypeExpr {
	return decl.TypeExpr{Name: name}
}

func TestLoadFormatsAgree(t *testing.T) {
	var loaded []decl.Symbols
	for _, name := range []string{"shapes.yaml", "shapes.toml", "shapes.json"} {
		symbols, err := New(WithLogger(zaptest.NewLogger(t).Sugar())).Load(filepath.Join("testdata", name))
		require.NoError(t, err, name)
		loaded = append(loaded, symbols)
	}
	assert.Equal(t, loaded[0], loaded[1], "toml differs from yaml")
	assert.Equal(t, loaded[0], loaded[2], "json differs from yaml")
}

func TestLoadShapes(t *testing.T) {
	symbols, err := New().Load(filepath.Join("testdata", "shapes.yaml"))
	require.NoError(t, err)

	require.Len(t, symbols.Functions, 3)
	move := symbols.Functions[0]
	assert.Equal(t, "move", move.Name)
	assert.Equal(t, "com.example", move.Package)
	assert.Equal(t, decl.FunctionTopLevel, move.Kind)
	assert.Equal(t, []decl.Parameter{
		{Name: "x", Type: kt("kotlin.Int")},
		{Name: "y", Type: kt("kotlin.Int")},
	}, move.Params)
	assert.Nil(t, move.ReturnType)

	assert.Empty(t, symbols.Functions[1].Params)
	assert.Equal(t, decl.Internal, symbols.Functions[2].Visibility)

	require.Len(t, symbols.Classes, 2)
	box := symbols.Classes[0]
	require.NotNil(t, box.PrimaryConstructor)
	assert.Empty(t, box.PrimaryConstructor.Params)
	assert.Same(t, box, box.PrimaryConstructor.Parent)
	require.Len(t, box.Functions, 1)
	assert.Equal(t, decl.FunctionMember, box.Functions[0].Kind)
	assert.Same(t, box, box.Functions[0].Parent)

	point := symbols.Classes[1]
	assert.Equal(t, []decl.TypeParameter{
		{Name: "T", Owner: decl.OwnerClass, Bounds: []decl.TypeExpr{kt("kotlin.Number")}},
	}, point.TypeParams)
	assert.Equal(t, []decl.Parameter{
		{Name: "x", Type: decl.Var("T")},
		{Name: "y", Type: decl.Var("T")},
	}, point.PrimaryConstructor.Params)
	assert.Equal(t, "com.example.Point<T>", point.PrimaryConstructor.ReturnType.String())

	paint := point.Functions[0]
	assert.Equal(t, []decl.Parameter{
		{Name: "color", Type: decl.TypeExpr{Name: "com.other.Color", Nullable: true}},
		{
			Name:     "tags",
			Type:     decl.TypeExpr{Name: "kotlin.collections.List", Args: []decl.TypeExpr{kt("kotlin.String")}},
			Variadic: true,
		},
	}, paint.Params)
	assert.Equal(t, &decl.TypeExpr{Name: "Point", Package: "com.example", Args: []decl.TypeExpr{decl.Var("T")}}, paint.ReturnType)
}

func TestLoadNestedScopes(t *testing.T) {
	symbols, err := New().Load(filepath.Join("testdata", "tree.yaml"))
	require.NoError(t, err)
	require.Len(t, symbols.Classes, 1)

	tree := symbols.Classes[0]
	require.Len(t, tree.Nested, 3)
	iter, node, listener := tree.Nested[0], tree.Nested[1], tree.Nested[2]

	// The inner class sees K from Tree and declares E.
	assert.True(t, iter.Inner)
	assert.Same(t, tree, iter.Outer)
	assert.Equal(t, "com.example.tree", iter.Package)
	assert.Equal(t, []decl.Parameter{
		{Name: "from", Type: decl.Var("K")},
		{Name: "step", Type: decl.Var("E")},
		{Name: "next", Type: decl.TypeExpr{Name: "Tree.Node", Package: "com.example.tree"}},
	}, iter.PrimaryConstructor.Params)

	nodeType := decl.TypeExpr{Name: "Tree.Node", Package: "com.example.tree"}
	nullableNode := nodeType
	nullableNode.Nullable = true
	assert.Equal(t, []decl.Parameter{
		{Name: "label", Type: kt("kotlin.String")},
		{Name: "child", Type: nullableNode},
		{Name: "visit", Type: decl.TypeExpr{Name: "kotlin.Function1", Args: []decl.TypeExpr{nodeType, kt("kotlin.Unit")}}},
	}, node.PrimaryConstructor.Params)

	assert.Equal(t, decl.ClassInterface, listener.Kind)
	assert.Equal(t, "com.example.tree.Tree.Listener.onChange", listener.Functions[0].QualifiedName())
}

func TestNestedClassDoesNotSeeOuterTypeParams(t *testing.T) {
	f := &File{
		Package: "com.example",
		Classes: []Class{{
			Name:       "Outer",
			TypeParams: []TypeParam{{Name: "T"}},
			Nested: []Class{{
				Name:        "Nested",
				Constructor: &Constructor{Params: []Param{{Name: "t", Type: "T"}}},
			}},
		}},
	}
	symbols, err := New().Collect(f)
	require.NoError(t, err)

	param := symbols.Classes[0].Nested[0].PrimaryConstructor.Params[0]
	assert.False(t, param.Type.Variable)
	assert.True(t, param.Type.Unresolved)
}

func TestDecodeNullableYAML(t *testing.T) {
	data := []byte(`package: com.example
functions:
  - name: tint
    params:
      - {name: color, type: "Int?"}
      - name: alpha
        type: Double?
`)
	f, err := Decode(data, FormatYAML)
	require.NoError(t, err)
	require.Len(t, f.Functions, 1)
	assert.Equal(t, "Int?", f.Functions[0].Params[0].Type)
	assert.Equal(t, "Double?", f.Functions[0].Params[1].Type)

	symbols, err := New().Collect(f)
	require.NoError(t, err)
	assert.Equal(t, []decl.Parameter{
		{Name: "color", Type: decl.TypeExpr{Name: "kotlin.Int", Nullable: true}},
		{Name: "alpha", Type: decl.TypeExpr{Name: "kotlin.Double", Nullable: true}},
	}, symbols.Functions[0].Params)
}

func TestCollectAcrossManifests(t *testing.T) {
	shapes := &File{
		Package:   "com.example",
		Imports:   []string{"com.geo.Area"},
		Functions: []Function{{Name: "fill", Params: []Param{{Name: "area", Type: "Area"}, {Name: "pending", Type: "Pending"}}}},
	}
	geo := &File{
		Package: "com.geo",
		Classes: []Class{{Name: "Area"}},
	}

	symbols, err := New().Collect(shapes, geo)
	require.NoError(t, err)
	require.Len(t, symbols.Functions, 1)
	require.Len(t, symbols.Classes, 1)

	params := symbols.Functions[0].Params
	assert.Equal(t, kt("com.geo.Area"), params[0].Type)
	assert.Equal(t, decl.TypeExpr{Name: "Pending", Unresolved: true}, params[1].Type)
}

func TestCollectFunctionScope(t *testing.T) {
	f := &File{
		Package: "com.example",
		Classes: []Class{{
			Name:       "Cache",
			TypeParams: []TypeParam{{Name: "K"}},
			Functions: []Function{{
				Name:       "load",
				TypeParams: []TypeParam{{Name: "R", Bounds: []string{"Comparable<R>"}}},
				Params:     []Param{{Name: "key", Type: "K"}, {Name: "map", Type: "Map<K, R>"}},
				Returns:    "R?",
			}},
		}},
	}
	symbols, err := New().Collect(f)
	require.NoError(t, err)

	load := symbols.Classes[0].Functions[0]
	assert.Equal(t, []decl.TypeParameter{{
		Name:   "R",
		Owner:  decl.OwnerFunction,
		Bounds: []decl.TypeExpr{{Name: "kotlin.Comparable", Args: []decl.TypeExpr{decl.Var("R")}}},
	}}, load.TypeParams)
	assert.Equal(t, decl.Var("K"), load.Params[0].Type)
	assert.Equal(t, "kotlin.collections.Map<K, R>", load.Params[1].Type.String())
	assert.Equal(t, "R?", load.ReturnType.String())
}

func TestCollectKinds(t *testing.T) {
	f := &File{
		Package: "com.example",
		Functions: []Function{
			{Name: "s", Kind: "static"},
			{Name: "l", Kind: "lambda"},
			{Name: "a", Kind: "anonymous"},
		},
		Classes: []Class{{Name: "O", Kind: "object"}, {Name: "E", Kind: "enum_class"}},
	}
	symbols, err := New().Collect(f)
	require.NoError(t, err)

	assert.Equal(t, decl.FunctionStatic, symbols.Functions[0].Kind)
	assert.Equal(t, decl.FunctionLambda, symbols.Functions[1].Kind)
	assert.Equal(t, decl.FunctionAnonymous, symbols.Functions[2].Kind)
	assert.Equal(t, decl.ClassObject, symbols.Classes[0].Kind)
	assert.Equal(t, decl.ClassEnum, symbols.Classes[1].Kind)
}

func TestCollectErrors(t *testing.T) {
	tests := []struct {
		name string
		file File
		want string
	}{
		{
			name: "unknown function kind",
			file: File{Package: "p", Functions: []Function{{Name: "f", Kind: "extension"}}},
			want: `unknown kind "extension"`,
		},
		{
			name: "unknown visibility",
			file: File{Package: "p", Functions: []Function{{Name: "f", Visibility: "friend"}}},
			want: `unknown visibility "friend"`,
		},
		{
			name: "unknown class kind",
			file: File{Package: "p", Classes: []Class{{Name: "C", Kind: "trait"}}},
			want: `unknown kind "trait"`,
		},
		{
			name: "duplicate parameter",
			file: File{Package: "p", Functions: []Function{{Name: "f", Params: []Param{{Name: "x", Type: "Int"}, {Name: "x", Type: "Int"}}}}},
			want: "duplicate parameter x",
		},
		{
			name: "unnamed function",
			file: File{Package: "p", Functions: []Function{{}}},
			want: "function without a name",
		},
		{
			name: "bad type syntax",
			file: File{Package: "p", Functions: []Function{{Name: "f", Params: []Param{{Name: "x", Type: "List<Int"}}}}},
			want: "expected ',' or '>'",
		},
		{
			name: "missing parameter type",
			file: File{Package: "p", Functions: []Function{{Name: "f", Params: []Param{{Name: "x"}}}}},
			want: "parameter x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Collect(&tt.file)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCollectGeneratorConstraint(t *testing.T) {
	f := &File{Package: "com.example", Generator: ">= 2"}

	_, err := New().Collect(f)
	require.NoError(t, err, "dev builds accept every constraint")

	var seen string
	_, err = New(WithVersionCheck(func(c string) error {
		seen = c
		return errors.Wrap(errors.ErrIncompatibleManifest, "too old")
	})).Collect(f)
	require.Error(t, err)
	assert.Equal(t, ">= 2", seen)
	assert.True(t, errors.Is(err, errors.ErrIncompatibleManifest))
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	tests := []struct {
		format Format
		data   string
	}{
		{FormatYAML, "package: p\nfunctionz: []\n"},
		{FormatTOML, "package = \"p\"\nfunctionz = []\n"},
		{FormatJSON, `{"package": "p", "functionz": []}`},
	}
	for _, tt := range tests {
		_, err := Decode([]byte(tt.data), tt.format)
		assert.Error(t, err, string(tt.format))
	}
}

func TestDecodeRequiresPackage(t *testing.T) {
	_, err := Decode([]byte("functions: []\n"), FormatYAML)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no package")
	assert.NotEmpty(t, errors.GetAllHints(err))

	_, err = Decode(nil, FormatYAML)
	assert.Error(t, err)
}

func TestFormatFromPath(t *testing.T) {
	for path, want := range map[string]Format{
		"a.yaml": FormatYAML,
		"a.YML":  FormatYAML,
		"a.toml": FormatTOML,
		"a.json": FormatJSON,
	} {
		got, err := FormatFromPath(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}

	_, err := FormatFromPath("a.xml")
	assert.Error(t, err)
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestManifestDrivesGeneration(t *testing.T) {
	symbols, err := New().Load(filepath.Join("testdata", "shapes.yaml"))
	require.NoError(t, err)

	mem := sink.NewMemory()
	res, err := processor.New(mem).Run(context.Background(), symbols)
	require.NoError(t, err)

	assert.Equal(t, []emit.Key{
		{Package: "com.example", Name: "MoveArgs"},
		{Package: "com.example", Name: "ScaleBoxArgs"},
		{Package: "com.example", Name: "PointConstructorArgs"},
		{Package: "com.example", Name: "PaintPointArgs"},
	}, res.Written)
	assert.Zero(t, res.Deferred.Len())
}
