package emit

import (
	"fmt"

	"github.com/teranos/namedargs/resolve"
)

// ArgsParam is the name of the single wrapper parameter.
const ArgsParam = "args"

// SuppressMarkers are attached to every generated unit. They silence a
// language-level deprecation class unrelated to the generated code.
var SuppressMarkers = []string{"DEPRECATION", "TYPEALIAS_EXPANSION_DEPRECATION"}

// CallKind describes how the wrapper reaches its forwarding target.
type CallKind int

const (
	// CallFunction invokes a free function by its simple name.
	CallFunction CallKind = iota
	// CallMethod invokes a member function on the wrapper receiver.
	CallMethod
	// CallConstructor instantiates a class by its package-relative name.
	CallConstructor
	// CallInnerConstructor instantiates an inner class through the outer
	// instance held by the wrapper receiver.
	CallInnerConstructor
)

func (k CallKind) String() string {
	switch k {
	case CallFunction:
		return "function"
	case CallMethod:
		return "member"
	case CallConstructor:
		return "constructor"
	case CallInnerConstructor:
		return "inner_constructor"
	default:
		return fmt.Sprintf("CallKind(%d)", int(k))
	}
}

// Field is one carrier field. It mirrors a source parameter exactly.
type Field struct {
	Name string
	Type resolve.TypeRef
}

// Carrier is the generated record type enumerating a callable's parameters.
type Carrier struct {
	Name       string
	Package    string
	TypeParams []resolve.TypeParam
	Fields     []Field
	// Exported tags the carrier as visible to the external consumer.
	Exported bool
}

// Param is the single wrapper parameter.
type Param struct {
	Name string
	Type resolve.TypeRef
}

// Arg maps a carrier field onto the source parameter of the same position.
// Spread marks a variadic source parameter; the field holds all values.
type Arg struct {
	Param  string
	Field  string
	Spread bool
}

// Call is the forwarding call in the wrapper body.
type Call struct {
	Kind CallKind
	// Target is the callee as written in the wrapper body.
	Target string
	// Source is the simple name of the source declaration. Renderers whose
	// target language spells constructors as functions forward to it.
	Source string
	Args   []Arg
}

// Wrapper is the generated forwarding callable.
type Wrapper struct {
	Name       string
	Package    string
	TypeParams []resolve.TypeParam
	Receiver   *resolve.TypeRef
	Param      Param
	Returns    *resolve.TypeRef
	Call       Call
	Exported   bool
}

// Key identifies a generated unit at the sink.
type Key struct {
	Package string
	Name    string
}

func (k Key) String() string {
	if k.Package == "" {
		return k.Name
	}
	return k.Package + "." + k.Name
}

// Unit is one generated source unit: a carrier and its wrapper, always
// together.
type Unit struct {
	Key      Key
	Carrier  Carrier
	Wrapper  Wrapper
	Exported bool
	Suppress []string
	// Origin is the qualified source declaration, for diagnostics.
	Origin string
}
