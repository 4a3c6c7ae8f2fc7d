// Package emit builds the carrier type and forwarding wrapper for a classified
// callable.
package emit

import (
	"github.com/teranos/namedargs/classify"
	"github.com/teranos/namedargs/decl"
	"github.com/teranos/namedargs/errors"
	"github.com/teranos/namedargs/naming"
	"github.com/teranos/namedargs/resolve"
)

// ErrUnsupportedKind is returned for static, anonymous and lambda functions.
var ErrUnsupportedKind = errors.ErrUnsupportedKind

// Emit builds the unit for c.
//
// It returns nil, nil when the callable has no parameters or is not public.
// Unsupported callables fail with ErrUnsupportedKind.
func Emit(c classify.Callable) (*Unit, error) {
	if c == nil {
		return nil, errors.AssertionFailedf("emit: nil callable")
	}
	fn := c.Source()
	if fn == nil {
		return nil, errors.AssertionFailedf("emit: %T without source declaration", c)
	}
	pkg := fn.Package

	var (
		names    naming.Names
		receiver *resolve.TypeRef
		returns  *resolve.TypeRef
		call     = Call{Source: fn.Name}
	)

	switch v := c.(type) {
	case *classify.TopLevelFunction:
		names = naming.Function(fn.Name)
		call.Kind, call.Target = CallFunction, fn.Name

	case *classify.Member:
		names = naming.Member(fn.Name, v.Receiver)
		r := v.Receiver
		receiver = &r
		call.Kind, call.Target = CallMethod, fn.Name

	case *classify.Constructor:
		names = naming.Constructor(v.Constructed)
		constructed := v.Constructed
		returns = &constructed
		if v.Inner {
			if v.Outer == nil {
				return nil, errors.AssertionFailedf("emit: inner constructor %s without outer receiver", fn.QualifiedName())
			}
			outer := *v.Outer
			receiver = &outer
			call.Kind, call.Target = CallInnerConstructor, resolve.BaseName(constructed)
		} else {
			call.Kind, call.Target = CallConstructor, resolve.RelativeName(resolve.Deref(constructed), pkg)
		}

	case *classify.Unsupported:
		return nil, errors.WithHint(
			errors.Wrapf(ErrUnsupportedKind, "%s function %s", fn.Kind, fn.QualifiedName()),
			"static, anonymous and lambda functions have no forwarding target; remove the export marker")

	default:
		return nil, errors.AssertionFailedf("emit: unhandled callable %T", c)
	}

	if len(fn.Params) == 0 || fn.Visibility != decl.Public {
		return nil, nil
	}

	scope := c.Scope()
	typeParams, err := resolve.ResolveTypeParams(scope, scope)
	if err != nil {
		return nil, errors.Wrapf(err, "type parameters of %s", fn.QualifiedName())
	}

	if returns == nil {
		returns, err = resolve.ResolveOptional(fn.ReturnType, scope)
		if err != nil {
			return nil, errors.Wrapf(err, "return type of %s", fn.QualifiedName())
		}
	}

	carrier := Carrier{
		Name:       names.Carrier,
		Package:    pkg,
		TypeParams: typeParams,
		Fields:     make([]Field, 0, len(fn.Params)),
		Exported:   true,
	}
	call.Args = make([]Arg, 0, len(fn.Params))
	for i, p := range fn.Params {
		if p.Name == "" {
			return nil, errors.Newf("parameter %d of %s has no name", i, fn.QualifiedName())
		}
		t, err := resolve.Resolve(p.Type, scope)
		if err != nil {
			return nil, errors.Wrapf(err, "parameter %s of %s", p.Name, fn.QualifiedName())
		}
		if p.Variadic {
			t = variadicField(t)
		}
		carrier.Fields = append(carrier.Fields, Field{Name: p.Name, Type: t})
		call.Args = append(call.Args, Arg{Param: p.Name, Field: p.Name, Spread: p.Variadic})
	}

	wrapper := Wrapper{
		Name:       names.Wrapper,
		Package:    pkg,
		TypeParams: typeParams,
		Receiver:   receiver,
		Param: Param{
			Name: ArgsParam,
			Type: resolve.Instantiate(pkg, names.Carrier, typeParams),
		},
		Returns:  returns,
		Call:     call,
		Exported: true,
	}

	return &Unit{
		Key:      Key{Package: pkg, Name: names.Carrier},
		Carrier:  carrier,
		Wrapper:  wrapper,
		Exported: true,
		Suppress: append([]string(nil), SuppressMarkers...),
		Origin:   fn.QualifiedName(),
	}, nil
}

// variadicField is the carrier field type holding every value of a variadic
// parameter of element type elem.
func variadicField(elem resolve.TypeRef) resolve.TypeRef {
	return resolve.TypeRef{Name: resolve.SliceName, Args: []resolve.TypeRef{elem}}
}
