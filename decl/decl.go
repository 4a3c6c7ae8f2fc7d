// Package decl defines the declaration graph consumed by the generator.
//
// Collectors (manifest files, Go source) build these values; the classifier,
// resolver and emitter read them. Nothing in this package resolves types: a
// TypeExpr is a type as written at the declaration site.
package decl

import (
	"fmt"
	"strings"
)

// FunctionKind is the syntactic kind of a function declaration.
type FunctionKind int

const (
	FunctionTopLevel FunctionKind = iota
	FunctionMember
	FunctionStatic
	FunctionAnonymous
	FunctionLambda
)

func (k FunctionKind) String() string {
	switch k {
	case FunctionTopLevel:
		return "top_level"
	case FunctionMember:
		return "member"
	case FunctionStatic:
		return "static"
	case FunctionAnonymous:
		return "anonymous"
	case FunctionLambda:
		return "lambda"
	default:
		return fmt.Sprintf("FunctionKind(%d)", int(k))
	}
}

// ParseFunctionKind maps a manifest spelling to a FunctionKind.
func ParseFunctionKind(s string) (FunctionKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "top_level", "toplevel", "top-level":
		return FunctionTopLevel, true
	case "member":
		return FunctionMember, true
	case "static":
		return FunctionStatic, true
	case "anonymous":
		return FunctionAnonymous, true
	case "lambda":
		return FunctionLambda, true
	}
	return 0, false
}

// ClassKind is the declared kind of a class-like declaration.
type ClassKind int

const (
	ClassPlain ClassKind = iota
	ClassInterface
	ClassObject
	ClassEnum
	ClassAnnotation
)

func (k ClassKind) String() string {
	switch k {
	case ClassPlain:
		return "class"
	case ClassInterface:
		return "interface"
	case ClassObject:
		return "object"
	case ClassEnum:
		return "enum"
	case ClassAnnotation:
		return "annotation"
	default:
		return fmt.Sprintf("ClassKind(%d)", int(k))
	}
}

// ParseClassKind maps a manifest spelling to a ClassKind.
func ParseClassKind(s string) (ClassKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "class":
		return ClassPlain, true
	case "interface":
		return ClassInterface, true
	case "object":
		return ClassObject, true
	case "enum", "enum_class":
		return ClassEnum, true
	case "annotation", "annotation_class":
		return ClassAnnotation, true
	}
	return 0, false
}

// Visibility of a declaration.
type Visibility int

const (
	Public Visibility = iota
	Internal
	Protected
	Private
)

func (v Visibility) String() string {
	switch v {
	case Public:
		return "public"
	case Internal:
		return "internal"
	case Protected:
		return "protected"
	case Private:
		return "private"
	default:
		return fmt.Sprintf("Visibility(%d)", int(v))
	}
}

// ParseVisibility maps a manifest spelling to a Visibility. Empty means public.
func ParseVisibility(s string) (Visibility, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "public":
		return Public, true
	case "internal":
		return Internal, true
	case "protected":
		return Protected, true
	case "private":
		return Private, true
	}
	return 0, false
}

// ParamOwner tells whether a type parameter is declared by a function or a class.
type ParamOwner int

const (
	OwnerFunction ParamOwner = iota
	OwnerClass
)

// TypeParameter is a declared generic parameter.
type TypeParameter struct {
	Name   string
	Bounds []TypeExpr
	Owner  ParamOwner
}

// TypeExpr is a type reference as written in source.
//
// Name may be package-qualified ("kotlin.collections.List") unless Package is
// set, in which case Name is qualified within that package ("Outer.Nested").
// Variable marks a reference to a declared type parameter. Unresolved marks a
// reference the collector could not bind to any known type yet.
type TypeExpr struct {
	Name       string
	Package    string
	Args       []TypeExpr
	Nullable   bool
	Variable   bool
	Unresolved bool
}

// String renders the expression the way it was written.
func (t TypeExpr) String() string {
	var sb strings.Builder
	if t.Package != "" {
		sb.WriteString(t.Package)
		sb.WriteByte('.')
	}
	sb.WriteString(t.Name)
	if len(t.Args) > 0 {
		sb.WriteByte('<')
		for i, arg := range t.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(arg.String())
		}
		sb.WriteByte('>')
	}
	if t.Nullable {
		sb.WriteByte('?')
	}
	return sb.String()
}

// Var is shorthand for a type-variable reference.
func Var(name string) TypeExpr {
	return TypeExpr{Name: name, Variable: true}
}

// Parameter is a named, ordered function parameter. A variadic parameter is
// typed as its element type.
type Parameter struct {
	Name     string
	Type     TypeExpr
	Variadic bool
}

// Function is a callable declaration: top-level function, member function or
// constructor.
type Function struct {
	Name        string
	Package     string
	Kind        FunctionKind
	Constructor bool
	Params      []Parameter
	ReturnType  *TypeExpr
	TypeParams  []TypeParameter
	Visibility  Visibility

	// Parent is the closest enclosing class, nil for top-level functions.
	Parent *Class
}

// QualifiedName is the package-qualified dotted path of the function, used in
// diagnostics only.
func (f *Function) QualifiedName() string {
	var parts []string
	if f.Package != "" {
		parts = append(parts, f.Package)
	}
	if f.Parent != nil {
		parts = append(parts, f.Parent.NestedName())
	}
	name := f.Name
	if f.Constructor {
		name = "<init>"
	}
	parts = append(parts, name)
	return strings.Join(parts, ".")
}

// Class is a class-like declaration and its members.
type Class struct {
	Name       string
	Package    string
	Kind       ClassKind
	Inner      bool
	TypeParams []TypeParameter

	PrimaryConstructor *Function
	// Functions are the declared functions in source order. The primary
	// constructor may or may not be listed here.
	Functions []*Function
	Nested    []*Class

	// Outer is the enclosing class of a nested class.
	Outer *Class
}

// NestedName is the class name qualified by its enclosing classes ("Outer.Inner").
func (c *Class) NestedName() string {
	if c.Outer == nil {
		return c.Name
	}
	return c.Outer.NestedName() + "." + c.Name
}

// QualifiedName is the package-qualified class name.
func (c *Class) QualifiedName() string {
	if c.Package == "" {
		return c.NestedName()
	}
	return c.Package + "." + c.NestedName()
}

// SelfType is the class instance type instantiated with its own type parameters.
func (c *Class) SelfType() TypeExpr {
	t := TypeExpr{Name: c.NestedName(), Package: c.Package}
	for _, tp := range c.TypeParams {
		t.Args = append(t.Args, Var(tp.Name))
	}
	return t
}

// Symbols is the already-validated input stream from a collector.
// Functions are processed before classes, each in the given order.
type Symbols struct {
	Functions []*Function
	Classes   []*Class
}

// Len returns the number of top-level symbols.
func (s Symbols) Len() int {
	return len(s.Functions) + len(s.Classes)
}

// Append adds the symbols of other after those of s.
func (s *Symbols) Append(other Symbols) {
	s.Functions = append(s.Functions, other.Functions...)
	s.Classes = append(s.Classes, other.Classes...)
}

// Link sets Parent and Outer back-references for a class tree built by hand.
// Collectors call it once per top-level class.
func Link(c *Class) {
	stack := []*Class{c}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if cur.PrimaryConstructor != nil {
			cur.PrimaryConstructor.Parent = cur
			cur.PrimaryConstructor.Constructor = true
			if cur.PrimaryConstructor.Package == "" {
				cur.PrimaryConstructor.Package = cur.Package
			}
			if cur.PrimaryConstructor.ReturnType == nil {
				self := cur.SelfType()
				cur.PrimaryConstructor.ReturnType = &self
			}
		}
		for _, fn := range cur.Functions {
			fn.Parent = cur
			if fn.Package == "" {
				fn.Package = cur.Package
			}
		}
		for _, nested := range cur.Nested {
			nested.Outer = cur
			if nested.Package == "" {
				nested.Package = cur.Package
			}
			stack = append(stack, nested)
		}
	}
}
