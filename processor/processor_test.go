package processor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/teranos/namedargs/classify"
	"github.com/teranos/namedargs/decl"
	"github.com/teranos/namedargs/emit"
	"github.com/teranos/namedargs/errors"
	"github.com/teranos/namedargs/sink"
)

const pkg = "com.example"

var (
	intType    = decl.TypeExpr{Name: "kotlin.Int"}
	doubleType = decl.TypeExpr{Name: "kotlin.Double"}
)

// scenarios builds the declarations of the reference scenarios: move, Box.scale,
// Point<T>, reset and internalHelper.
func scenarios() decl.Symbols {
	box := &decl.Class{
		Name:               "Box",
		Package:            pkg,
		PrimaryConstructor: &decl.Function{Kind: decl.FunctionMember},
		Functions: []*decl.Function{{
			Name:   "scale",
			Kind:   decl.FunctionMember,
			Params: []decl.Parameter{{Name: "factor", Type: doubleType}},
		}},
	}
	point := &decl.Class{
		Name:       "Point",
		Package:    pkg,
		TypeParams: []decl.TypeParameter{{Name: "T", Owner: decl.OwnerClass}},
		PrimaryConstructor: &decl.Function{
			Kind:   decl.FunctionMember,
			Params: []decl.Parameter{{Name: "x", Type: decl.Var("T")}, {Name: "y", Type: decl.Var("T")}},
		},
	}
	decl.Link(box)
	decl.Link(point)

	return decl.Symbols{
		Functions: []*decl.Function{
			{
				Name:    "move",
				Package: pkg,
				Kind:    decl.FunctionTopLevel,
				Params:  []decl.Parameter{{Name: "x", Type: intType}, {Name: "y", Type: intType}},
			},
			{Name: "reset", Package: pkg, Kind: decl.FunctionTopLevel},
			{
				Name:       "internalHelper",
				Package:    pkg,
				Kind:       decl.FunctionTopLevel,
				Visibility: decl.Private,
				Params:     []decl.Parameter{{Name: "a", Type: intType}},
			},
		},
		Classes: []*decl.Class{box, point},
	}
}

func TestRunScenarios(t *testing.T) {
	mem := sink.NewMemory()
	p := New(mem, WithLogger(zaptest.NewLogger(t).Sugar()))

	res, err := p.Run(context.Background(), scenarios())
	require.NoError(t, err)

	assert.Equal(t, []emit.Key{
		{Package: pkg, Name: "MoveArgs"},
		{Package: pkg, Name: "ScaleBoxArgs"},
		{Package: pkg, Name: "PointConstructorArgs"},
	}, res.Written)

	// reset, internalHelper and the parameterless Box constructor
	assert.Equal(t, 3, res.Ignored)
	assert.Empty(t, res.Skips)
	assert.Zero(t, res.Deferred.Len())

	units := mem.Units()
	require.Len(t, units, 3)
	assert.Equal(t, "moveWrapper", units[0].Wrapper.Name)
	assert.Equal(t, "scaleBoxWrapper", units[1].Wrapper.Name)
	assert.Equal(t, "createPointWrapper", units[2].Wrapper.Name)
}

func TestRunDeterministic(t *testing.T) {
	run := func() []*emit.Unit {
		mem := sink.NewMemory()
		_, err := New(mem).Run(context.Background(), scenarios())
		require.NoError(t, err)
		return mem.Units()
	}
	assert.Equal(t, run(), run())
}

func TestRunCollisionIsFatal(t *testing.T) {
	// Two nested classes named Box in one package produce ScaleBoxArgs twice
	newBox := func() *decl.Class {
		return &decl.Class{
			Name:               "Box",
			PrimaryConstructor: &decl.Function{Kind: decl.FunctionMember},
			Functions: []*decl.Function{{
				Name:   "scale",
				Kind:   decl.FunctionMember,
				Params: []decl.Parameter{{Name: "factor", Type: doubleType}},
			}},
		}
	}
	a := &decl.Class{Name: "A", Package: pkg, Nested: []*decl.Class{newBox()}}
	b := &decl.Class{Name: "B", Package: pkg, Nested: []*decl.Class{newBox()}}
	decl.Link(a)
	decl.Link(b)

	mem := sink.NewMemory()
	res, err := New(mem).Run(context.Background(), decl.Symbols{Classes: []*decl.Class{a, b}})

	require.Error(t, err)
	assert.True(t, errors.IsCollision(err))
	assert.Contains(t, err.Error(), "write com.example.ScaleBoxArgs")
	assert.Len(t, res.Written, 1)
	assert.Equal(t, 1, mem.Len())
}

func TestRunSinkFailureIsFatal(t *testing.T) {
	var writes int
	failing := sink.Func(func(context.Context, *emit.Unit) error {
		writes++
		return errors.New("disk full")
	})

	res, err := New(failing).Run(context.Background(), scenarios())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 1, writes, "no writes after the first failure")
	assert.Empty(t, res.Written)
}

func TestRunUnsupportedKindFailsLoudly(t *testing.T) {
	symbols := decl.Symbols{Functions: []*decl.Function{
		{Name: "move", Package: pkg, Kind: decl.FunctionTopLevel, Params: []decl.Parameter{{Name: "x", Type: intType}}},
		{Name: "lambda", Package: pkg, Kind: decl.FunctionLambda, Params: []decl.Parameter{{Name: "x", Type: intType}}},
		{Name: "jump", Package: pkg, Kind: decl.FunctionTopLevel, Params: []decl.Parameter{{Name: "x", Type: intType}}},
	}}

	mem := sink.NewMemory()
	res, err := New(mem).Run(context.Background(), symbols)

	require.Error(t, err)
	assert.True(t, errors.IsUnsupported(err))
	assert.Equal(t, []emit.Key{{Package: pkg, Name: "MoveArgs"}}, res.Written)
}

func TestRunLogsSkips(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	iface := &decl.Class{Name: "Listener", Package: pkg, Kind: decl.ClassInterface}
	orphan := &decl.Function{Name: "orphan", Package: pkg, Kind: decl.FunctionMember}

	res, err := New(sink.NewMemory(), WithLogger(zap.New(core).Sugar())).
		Run(context.Background(), decl.Symbols{Functions: []*decl.Function{orphan}, Classes: []*decl.Class{iface}})
	require.NoError(t, err)

	require.Len(t, res.Skips, 2)
	assert.Equal(t, classify.ReasonNoEnclosingClass, res.Skips[0].Reason)
	assert.Equal(t, classify.ReasonClassKind, res.Skips[1].Reason)

	skipped := logs.FilterMessage("Skipping declaration").All()
	require.Len(t, skipped, 2)
	assert.Equal(t, "com.example.orphan", skipped[0].ContextMap()["symbol"])
	assert.Equal(t, 1, logs.FilterMessage("Generation pass complete").Len())
}

func TestRunDefersUnresolvedSymbols(t *testing.T) {
	pending := &decl.Function{
		Name:    "load",
		Package: pkg,
		Kind:    decl.FunctionTopLevel,
		Params: []decl.Parameter{{
			Name: "items",
			Type: decl.TypeExpr{Name: "kotlin.collections.List", Args: []decl.TypeExpr{{Name: "Pending", Unresolved: true}}},
		}},
	}
	pendingClass := &decl.Class{
		Name:    "Holder",
		Package: pkg,
		Nested: []*decl.Class{{
			Name: "Inner",
			PrimaryConstructor: &decl.Function{
				Kind:   decl.FunctionMember,
				Params: []decl.Parameter{{Name: "p", Type: decl.TypeExpr{Name: "Pending", Unresolved: true}}},
			},
		}},
	}
	decl.Link(pendingClass)

	symbols := scenarios()
	symbols.Functions = append(symbols.Functions, pending)
	symbols.Classes = append(symbols.Classes, pendingClass)

	mem := sink.NewMemory()
	res, err := New(mem).Run(context.Background(), symbols)
	require.NoError(t, err)

	assert.Len(t, res.Written, 3)
	require.Len(t, res.Deferred.Functions, 1)
	assert.Same(t, pending, res.Deferred.Functions[0])
	require.Len(t, res.Deferred.Classes, 1)
	assert.Same(t, pendingClass, res.Deferred.Classes[0])
}

func TestRunAllReadyGate(t *testing.T) {
	pending := &decl.Function{
		Name:    "load",
		Package: pkg,
		Kind:    decl.FunctionTopLevel,
		Params:  []decl.Parameter{{Name: "p", Type: decl.TypeExpr{Name: "Pending", Unresolved: true}}},
	}

	_, err := New(sink.NewMemory(), WithGate(AllReady)).
		Run(context.Background(), decl.Symbols{Functions: []*decl.Function{pending}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnresolvedType))
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := New(sink.NewMemory()).Run(ctx, scenarios())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, res.Written)
}

func TestResolvedGatePreservesOrder(t *testing.T) {
	a := &decl.Function{Name: "a"}
	b := &decl.Function{Name: "b", ReturnType: &decl.TypeExpr{Name: "X", Unresolved: true}}
	c := &decl.Function{Name: "c"}

	ready, deferred := ResolvedGate(decl.Symbols{Functions: []*decl.Function{a, b, c}})
	assert.Equal(t, []*decl.Function{a, c}, ready.Functions)
	assert.Equal(t, []*decl.Function{b}, deferred.Functions)
}
