// Package classify decides which processing path applies to each declaration
// and which type parameters and receiver are in scope for it.
//
// Class trees are walked with an explicit stack, so arbitrarily deep nesting
// costs heap, not goroutine stack. The order is the order of declaration:
// constructor, then member functions, then each nested class depth-first.
//
// A member's scope is its class's type parameters plus its own, not the class
// parameters alone, so wrappers of generic methods stay well-formed.
package classify

import (
	"github.com/teranos/namedargs/decl"
	"github.com/teranos/namedargs/resolve"
)

// Result is the ordered outcome of classifying a set of symbols.
type Result struct {
	Callables []Callable
	Skips     []Skip
}

func (r *Result) add(c Callable, s *Skip) {
	if s != nil {
		r.Skips = append(r.Skips, *s)
		return
	}
	if c != nil {
		r.Callables = append(r.Callables, c)
	}
}

// Symbols classifies function symbols in order, then class symbols in order.
func Symbols(symbols decl.Symbols) Result {
	var r Result
	for _, fn := range symbols.Functions {
		r.add(Function(fn))
	}
	for _, cls := range symbols.Classes {
		sub := Class(cls)
		r.Callables = append(r.Callables, sub.Callables...)
		r.Skips = append(r.Skips, sub.Skips...)
	}
	return r
}

// Function classifies a directly annotated function declaration.
//
// Exactly one of the results is non-nil.
func Function(fn *decl.Function) (Callable, *Skip) {
	switch fn.Kind {
	case decl.FunctionTopLevel:
		return &TopLevelFunction{Decl: fn, TypeParams: fn.TypeParams}, nil

	case decl.FunctionMember:
		cls := fn.Parent
		if cls == nil {
			return nil, skip(fn.QualifiedName(), ReasonNoEnclosingClass)
		}
		scope := ClassScope(cls)
		if fn.Constructor {
			return constructor(cls, fn, scope)
		}
		return member(cls, fn, scope)

	case decl.FunctionStatic, decl.FunctionAnonymous, decl.FunctionLambda:
		return &Unsupported{Decl: fn}, nil

	default:
		// Unknown kinds are carried to the emitter, which rejects them
		return &Unsupported{Decl: fn}, nil
	}
}

// Class classifies a class declaration and everything declared inside it.
// Non-plain class kinds are skipped together with their nested classes.
func Class(root *decl.Class) Result {
	var r Result

	stack := []*decl.Class{root}
	for len(stack) > 0 {
		cls := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if cls.Kind != decl.ClassPlain {
			r.add(nil, skip(cls.QualifiedName(), ReasonClassKind))
			continue
		}

		scope := ClassScope(cls)

		if cls.PrimaryConstructor != nil {
			r.add(constructor(cls, cls.PrimaryConstructor, scope))
		}

		for _, fn := range cls.Functions {
			switch {
			case fn == cls.PrimaryConstructor:
				continue
			case fn.Constructor:
				r.add(nil, skip(fn.QualifiedName(), ReasonSecondaryConstruct))
			case fn.Kind != decl.FunctionMember:
				r.add(nil, skip(fn.QualifiedName(), ReasonNotMember))
			default:
				r.add(member(cls, fn, scope))
			}
		}

		// Reverse push keeps declared order on pop
		for i := len(cls.Nested) - 1; i >= 0; i-- {
			stack = append(stack, cls.Nested[i])
		}
	}

	return r
}

// ClassScope returns the type parameters in lexical scope inside cls: its own,
// preceded by those of every enclosing class reachable through a chain of
// inner classes. A non-inner nested class does not see its outer parameters.
func ClassScope(cls *decl.Class) []decl.TypeParameter {
	chain := []*decl.Class{cls}
	for cur := cls; cur.Inner && cur.Outer != nil; cur = cur.Outer {
		chain = append(chain, cur.Outer)
	}

	var scope []decl.TypeParameter
	for i := len(chain) - 1; i >= 0; i-- {
		scope = resolve.Merge(scope, chain[i].TypeParams)
	}
	return scope
}

func constructor(cls *decl.Class, fn *decl.Function, scope []decl.TypeParameter) (Callable, *Skip) {
	constructed, err := resolve.ResolveOptional(fn.ReturnType, scope)
	if err != nil || constructed == nil {
		return nil, skip(fn.QualifiedName(), ReasonUnresolvedReturn)
	}

	c := &Constructor{
		Decl:        fn,
		TypeParams:  scope,
		Constructed: *constructed,
		Inner:       cls.Inner,
	}
	if cls.Inner {
		if cls.Outer == nil {
			return nil, skip(fn.QualifiedName(), ReasonInnerWithoutOuter)
		}
		outer, err := resolve.Resolve(cls.Outer.SelfType(), scope)
		if err != nil {
			return nil, skip(fn.QualifiedName(), ReasonInnerWithoutOuter)
		}
		c.Outer = &outer
	}
	return c, nil
}

func member(cls *decl.Class, fn *decl.Function, classScope []decl.TypeParameter) (Callable, *Skip) {
	if cls.PrimaryConstructor == nil {
		return nil, skip(fn.QualifiedName(), ReasonNoReceiver)
	}
	receiver, err := resolve.ResolveOptional(cls.PrimaryConstructor.ReturnType, classScope)
	if err != nil || receiver == nil {
		return nil, skip(fn.QualifiedName(), ReasonNoReceiver)
	}

	return &Member{
		Decl:       fn,
		TypeParams: resolve.Merge(classScope, fn.TypeParams),
		Receiver:   *receiver,
	}, nil
}

func skip(symbol string, reason SkipReason) *Skip {
	return &Skip{Symbol: symbol, Reason: reason}
}
