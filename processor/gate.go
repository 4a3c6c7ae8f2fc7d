package processor

import "github.com/teranos/namedargs/decl"

// Gate splits symbols into those processable in this round and those handed
// back for a later one. Order is preserved on both sides.
type Gate func(symbols decl.Symbols) (ready, deferred decl.Symbols)

// ResolvedGate defers every top-level symbol that mentions a type the
// collector marked unresolved. A class is deferred as a whole, nested classes
// included.
func ResolvedGate(symbols decl.Symbols) (ready, deferred decl.Symbols) {
	for _, fn := range symbols.Functions {
		if functionResolved(fn) {
			ready.Functions = append(ready.Functions, fn)
		} else {
			deferred.Functions = append(deferred.Functions, fn)
		}
	}
	for _, cls := range symbols.Classes {
		if classResolved(cls) {
			ready.Classes = append(ready.Classes, cls)
		} else {
			deferred.Classes = append(deferred.Classes, cls)
		}
	}
	return ready, deferred
}

// AllReady is a gate that defers nothing.
func AllReady(symbols decl.Symbols) (ready, deferred decl.Symbols) {
	return symbols, decl.Symbols{}
}

func classResolved(root *decl.Class) bool {
	stack := []*decl.Class{root}
	for len(stack) > 0 {
		cls := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !paramsResolved(cls.TypeParams) {
			return false
		}
		if cls.PrimaryConstructor != nil && !functionResolved(cls.PrimaryConstructor) {
			return false
		}
		for _, fn := range cls.Functions {
			if !functionResolved(fn) {
				return false
			}
		}
		stack = append(stack, cls.Nested...)
	}
	return true
}

func functionResolved(fn *decl.Function) bool {
	if !paramsResolved(fn.TypeParams) {
		return false
	}
	for _, p := range fn.Params {
		if !typeResolved(p.Type) {
			return false
		}
	}
	return fn.ReturnType == nil || typeResolved(*fn.ReturnType)
}

func paramsResolved(params []decl.TypeParameter) bool {
	for _, p := range params {
		for _, b := range p.Bounds {
			if !typeResolved(b) {
				return false
			}
		}
	}
	return true
}

func typeResolved(t decl.TypeExpr) bool {
	if t.Unresolved {
		return false
	}
	for _, arg := range t.Args {
		if !typeResolved(arg) {
			return false
		}
	}
	return true
}
