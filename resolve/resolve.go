// Package resolve turns type expressions written at a declaration site into
// TypeRefs usable in generated code.
//
// Every function here is pure. The type parameters in lexical scope are always
// passed explicitly; nothing is looked up from ambient state.
package resolve

import (
	"github.com/teranos/namedargs/decl"
	"github.com/teranos/namedargs/errors"
)

// TypeParam is a type parameter with resolved bounds.
type TypeParam struct {
	Name   string
	Bounds []TypeRef
}

// Resolve binds the free type variables of expr against scope and threads the
// generic arguments through.
func Resolve(expr decl.TypeExpr, scope []decl.TypeParameter) (TypeRef, error) {
	if expr.Name == "" {
		return TypeRef{}, errors.WithStack(ErrEmptyTypeName)
	}

	if expr.Unresolved {
		return TypeRef{}, errors.Wrapf(ErrUnresolvedType, "%s", expr.Name)
	}

	if expr.Variable {
		if len(expr.Args) > 0 {
			return TypeRef{}, errors.Newf("type variable %s cannot take type arguments", expr.Name)
		}
		if !inScope(expr.Name, scope) {
			return TypeRef{}, errors.WithHintf(
				errors.Wrapf(ErrUnboundTypeVariable, "%s", expr.Name),
				"type parameters in scope: %v", Names(scope))
		}
		return TypeRef{Name: expr.Name, Variable: true, Nullable: expr.Nullable}, nil
	}

	ref := TypeRef{Package: expr.Package, Name: expr.Name, Nullable: expr.Nullable}
	if ref.Package == "" {
		ref.Package, ref.Name = SplitQualified(expr.Name)
	}

	if len(expr.Args) > 0 {
		ref.Args = make([]TypeRef, 0, len(expr.Args))
		for _, arg := range expr.Args {
			resolved, err := Resolve(arg, scope)
			if err != nil {
				return TypeRef{}, errors.Wrapf(err, "argument of %s", expr.Name)
			}
			ref.Args = append(ref.Args, resolved)
		}
	}
	return ref, nil
}

// ResolveOptional resolves expr when it is non-nil.
func ResolveOptional(expr *decl.TypeExpr, scope []decl.TypeParameter) (*TypeRef, error) {
	if expr == nil {
		return nil, nil
	}
	ref, err := Resolve(*expr, scope)
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// ResolveTypeParams resolves the bounds of params under scope. Bounds may refer
// to any parameter in scope, including the parameter itself (T : Comparable<T>).
func ResolveTypeParams(params, scope []decl.TypeParameter) ([]TypeParam, error) {
	if len(params) == 0 {
		return nil, nil
	}
	out := make([]TypeParam, 0, len(params))
	for _, p := range params {
		tp := TypeParam{Name: p.Name}
		for _, bound := range p.Bounds {
			ref, err := Resolve(bound, scope)
			if err != nil {
				return nil, errors.Wrapf(err, "bound of %s", p.Name)
			}
			tp.Bounds = append(tp.Bounds, ref)
		}
		out = append(out, tp)
	}
	return out, nil
}

// Instantiate builds the reference Name<P1, ..., Pn> where each Pi is a type
// variable for the corresponding parameter.
func Instantiate(pkg, name string, params []TypeParam) TypeRef {
	ref := TypeRef{Package: pkg, Name: name}
	for _, p := range params {
		ref.Args = append(ref.Args, TypeRef{Name: p.Name, Variable: true})
	}
	return ref
}

// Merge returns the scope visible inside a declaration owning inner that is
// nested in a scope owning outer. An inner parameter shadows an outer parameter
// with the same name; the result keeps outer order followed by inner order.
func Merge(outer, inner []decl.TypeParameter) []decl.TypeParameter {
	if len(outer) == 0 {
		return append([]decl.TypeParameter(nil), inner...)
	}
	if len(inner) == 0 {
		return append([]decl.TypeParameter(nil), outer...)
	}

	shadowed := make(map[string]struct{}, len(inner))
	for _, p := range inner {
		shadowed[p.Name] = struct{}{}
	}

	merged := make([]decl.TypeParameter, 0, len(outer)+len(inner))
	for _, p := range outer {
		if _, ok := shadowed[p.Name]; ok {
			continue
		}
		merged = append(merged, p)
	}
	return append(merged, inner...)
}

// Names returns the names of params in order.
func Names(params []decl.TypeParameter) []string {
	if len(params) == 0 {
		return nil
	}
	names := make([]string, 0, len(params))
	for _, p := range params {
		names = append(names, p.Name)
	}
	return names
}

func inScope(name string, scope []decl.TypeParameter) bool {
	for _, p := range scope {
		if p.Name == name {
			return true
		}
	}
	return false
}

// Errors re-exported for callers that only import resolve.
var (
	ErrUnboundTypeVariable = errors.ErrUnboundTypeVariable
	ErrEmptyTypeName       = errors.ErrEmptyTypeName
	ErrUnresolvedType      = errors.ErrUnresolvedType
)
