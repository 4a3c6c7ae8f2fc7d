package gosrc

import (
	"go/types"

	"github.com/teranos/namedargs/decl"
	"github.com/teranos/namedargs/errors"
	"github.com/teranos/namedargs/resolve"
)

// invalidName names a type that failed to type-check.
const invalidName = "invalid type"

// typeExpr converts a go/types type into a declaration-site type expression.
// Type parameters listed in rename are referred to by their mapped name.
func typeExpr(t types.Type, rename map[*types.TypeParam]string) (decl.TypeExpr, error) {
	switch t := types.Unalias(t).(type) {
	case *types.Basic:
		switch t.Kind() {
		case types.Invalid:
			return decl.TypeExpr{Name: invalidName, Unresolved: true}, nil
		case types.UnsafePointer:
			return decl.TypeExpr{Name: "Pointer", Package: "unsafe"}, nil
		}
		return decl.TypeExpr{Name: t.Name()}, nil

	case *types.Pointer:
		return composite(resolve.PointerName, rename, t.Elem())

	case *types.Slice:
		return composite(resolve.SliceName, rename, t.Elem())

	case *types.Map:
		return composite(resolve.MapName, rename, t.Key(), t.Elem())

	case *types.Signature:
		if t.Variadic() {
			return decl.TypeExpr{}, errors.Newf("unsupported variadic function type %s", t)
		}
		elems := make([]types.Type, 0, t.Params().Len())
		for i := 0; i < t.Params().Len(); i++ {
			elems = append(elems, t.Params().At(i).Type())
		}
		fn, err := composite(resolve.FuncName, rename, elems...)
		if err != nil {
			return decl.TypeExpr{}, err
		}
		res, err := tuple(t.Results(), rename)
		if err != nil {
			return decl.TypeExpr{}, err
		}
		fn.Args = append(fn.Args, res)
		return fn, nil

	case *types.Named:
		obj := t.Obj()
		expr := decl.TypeExpr{Name: obj.Name()}
		if obj.Pkg() != nil {
			expr.Package = obj.Pkg().Path()
		}
		args := t.TypeArgs()
		for i := 0; i < args.Len(); i++ {
			arg, err := typeExpr(args.At(i), rename)
			if err != nil {
				return decl.TypeExpr{}, err
			}
			expr.Args = append(expr.Args, arg)
		}
		return expr, nil

	case *types.TypeParam:
		return decl.Var(paramName(t, rename)), nil

	case *types.Interface:
		if t.Empty() {
			return decl.TypeExpr{Name: "any"}, nil
		}
	}

	return decl.TypeExpr{}, errors.WithHint(
		errors.Newf("unsupported type %s", t),
		"use a named type, pointer, slice, map or function type")
}

func composite(name string, rename map[*types.TypeParam]string, elems ...types.Type) (decl.TypeExpr, error) {
	expr := decl.TypeExpr{Name: name}
	for _, elem := range elems {
		arg, err := typeExpr(elem, rename)
		if err != nil {
			return decl.TypeExpr{}, err
		}
		expr.Args = append(expr.Args, arg)
	}
	return expr, nil
}

// tuple converts a result list into a TupleName expression.
func tuple(results *types.Tuple, rename map[*types.TypeParam]string) (decl.TypeExpr, error) {
	elems := make([]types.Type, 0, results.Len())
	for i := 0; i < results.Len(); i++ {
		elems = append(elems, results.At(i).Type())
	}
	return composite(resolve.TupleName, rename, elems...)
}

// results converts a result list: nothing for none, the single type, or a tuple.
func results(res *types.Tuple, rename map[*types.TypeParam]string) (*decl.TypeExpr, error) {
	switch res.Len() {
	case 0:
		return nil, nil
	case 1:
		t, err := typeExpr(res.At(0).Type(), rename)
		if err != nil {
			return nil, err
		}
		return &t, nil
	}
	t, err := tuple(res, rename)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// constraintBounds turns a type parameter constraint into bounds. Empty
// interfaces have none, named constraints are one bound, and interface
// literals contribute their embedded named types.
func constraintBounds(constraint types.Type, rename map[*types.TypeParam]string) ([]decl.TypeExpr, error) {
	iface, literal := types.Unalias(constraint).(*types.Interface)
	if !literal {
		b, err := typeExpr(constraint, rename)
		if err != nil {
			return nil, err
		}
		return []decl.TypeExpr{b}, nil
	}
	if iface.Empty() {
		return nil, nil
	}
	if iface.NumExplicitMethods() > 0 {
		return nil, errors.WithHint(
			errors.New("constraint literal with methods"),
			"declare the constraint as a named interface")
	}

	var bounds []decl.TypeExpr
	for i := 0; i < iface.NumEmbeddeds(); i++ {
		embedded := iface.EmbeddedType(i)
		if _, ok := types.Unalias(embedded).(*types.Named); !ok {
			return nil, errors.WithHint(
				errors.Newf("unsupported constraint element %s", embedded),
				"declare the constraint as a named interface")
		}
		b, err := typeExpr(embedded, rename)
		if err != nil {
			return nil, err
		}
		bounds = append(bounds, b)
	}
	return bounds, nil
}
