// Package naming derives the carrier-type and wrapper names for a callable.
//
// Three deterministic schemes exist, one per callable kind:
//
//	function     move         -> MoveArgs,             moveWrapper
//	member       Box.scale    -> ScaleBoxArgs,         scaleBoxWrapper
//	constructor  Point<T>     -> PointConstructorArgs, createPointWrapper
//
// Joining the callable name with the receiver's base name keeps same-named
// methods on different receivers apart within one package. It is best-effort:
// two receivers with the same base name in one package still collide, and the
// collision surfaces at the sink.
package naming

import "github.com/teranos/namedargs/resolve"

const (
	argsSuffix        = "Args"
	constructorSuffix = "ConstructorArgs"
	wrapperSuffix     = "Wrapper"
	createPrefix      = "create"
)

// Names are the synthesized names of a carrier/wrapper pair.
type Names struct {
	Carrier string
	Wrapper string
}

// Function names the pair for a top-level function.
func Function(name string) Names {
	return Names{
		Carrier: Titlecase(name) + argsSuffix,
		Wrapper: name + wrapperSuffix,
	}
}

// Member names the pair for a member function on receiver.
func Member(name string, receiver resolve.TypeRef) Names {
	base := resolve.BaseName(receiver)
	return Names{
		Carrier: Titlecase(name) + base + argsSuffix,
		Wrapper: name + base + wrapperSuffix,
	}
}

// Constructor names the pair for the primary constructor of constructed.
func Constructor(constructed resolve.TypeRef) Names {
	base := resolve.BaseName(constructed)
	return Names{
		Carrier: base + constructorSuffix,
		Wrapper: createPrefix + base + wrapperSuffix,
	}
}
