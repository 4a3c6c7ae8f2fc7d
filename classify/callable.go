package classify

import (
	"github.com/teranos/namedargs/decl"
	"github.com/teranos/namedargs/resolve"
)

// Callable is a classified callable declaration. The set of implementations is
// closed: *TopLevelFunction, *Member, *Constructor and *Unsupported. Consumers
// switch over all four and treat anything else as an assertion failure.
type Callable interface {
	// Source is the declaration being wrapped.
	Source() *decl.Function
	// Scope is the ordered list of type parameters in lexical scope at the
	// call site. Generated declarations carry exactly these.
	Scope() []decl.TypeParameter

	callable()
}

// TopLevelFunction is a free function. Its scope is its own type parameters.
type TopLevelFunction struct {
	Decl       *decl.Function
	TypeParams []decl.TypeParameter
}

// Member is a member function called on an instance of Receiver.
type Member struct {
	Decl       *decl.Function
	TypeParams []decl.TypeParameter
	// Receiver is the enclosing class instance type, taken from its primary
	// constructor's return type.
	Receiver resolve.TypeRef
}

// Constructor is the primary constructor of a plain class.
type Constructor struct {
	Decl       *decl.Function
	TypeParams []decl.TypeParameter
	// Constructed is the instance type the constructor returns.
	Constructed resolve.TypeRef
	// Inner is set for inner classes, which need an outer instance.
	Inner bool
	// Outer is the enclosing class instance type when Inner is set.
	Outer *resolve.TypeRef
}

// Unsupported is a callable kind with no defined forwarding target (static,
// anonymous, lambda). It is carried through so the emitter can reject it.
type Unsupported struct {
	Decl *decl.Function
}

func (c *TopLevelFunction) Source() *decl.Function      { return c.Decl }
func (c *TopLevelFunction) Scope() []decl.TypeParameter { return c.TypeParams }
func (*TopLevelFunction) callable()                     {}

func (c *Member) Source() *decl.Function      { return c.Decl }
func (c *Member) Scope() []decl.TypeParameter { return c.TypeParams }
func (*Member) callable()                     {}

func (c *Constructor) Source() *decl.Function      { return c.Decl }
func (c *Constructor) Scope() []decl.TypeParameter { return c.TypeParams }
func (*Constructor) callable()                     {}

func (c *Unsupported) Source() *decl.Function      { return c.Decl }
func (c *Unsupported) Scope() []decl.TypeParameter { return nil }
func (*Unsupported) callable()                     {}

// SkipReason explains why a declaration produced no callable.
type SkipReason string

const (
	ReasonClassKind          SkipReason = "class kind is not a plain class"
	ReasonNoEnclosingClass   SkipReason = "member has no enclosing class"
	ReasonNoReceiver         SkipReason = "enclosing class has no resolvable primary constructor"
	ReasonUnresolvedReturn   SkipReason = "constructor return type cannot be resolved"
	ReasonNotMember          SkipReason = "function inside class is not a member function"
	ReasonSecondaryConstruct SkipReason = "secondary constructor"
	ReasonInnerWithoutOuter  SkipReason = "inner class has no enclosing class"
)

// Skip records a declaration that is not eligible. Skips are expected and are
// never errors.
type Skip struct {
	Symbol string
	Reason SkipReason
}
