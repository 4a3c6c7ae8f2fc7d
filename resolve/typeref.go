package resolve

import (
	"strings"
	"unicode"
)

// Composite type names produced by the Go collector. They carry their element
// types in Args.
const (
	PointerName = "*"
	SliceName   = "[]"
	MapName     = "map"

	// TupleName groups the results of a Go function returning more than one value.
	TupleName = "()"
	// FuncName is a Go function type. Args are the parameter types followed by
	// a TupleName ref holding the results.
	FuncName = "func"
)

// TypeRef is a resolved type reference usable in generated code.
type TypeRef struct {
	// Package is the declaring package, empty for type variables and builtins
	// without a package.
	Package string
	// Name is qualified within Package ("Outer.Nested").
	Name     string
	Args     []TypeRef
	Nullable bool
	// Variable marks a reference bound to a type parameter in scope.
	Variable bool
}

// IsZero reports whether t is the zero TypeRef.
func (t TypeRef) IsZero() bool {
	return t.Name == "" && t.Package == "" && len(t.Args) == 0
}

// Qualified returns the package-qualified name without generic arguments.
func (t TypeRef) Qualified() string {
	if t.Package == "" {
		return t.Name
	}
	return t.Package + "." + t.Name
}

// String renders the fully qualified reference, e.g.
// "kotlin.collections.Map<kotlin.String, T?>".
func (t TypeRef) String() string {
	var sb strings.Builder
	t.write(&sb)
	return sb.String()
}

func (t TypeRef) write(sb *strings.Builder) {
	sb.WriteString(t.Qualified())
	if len(t.Args) > 0 {
		sb.WriteByte('<')
		for i, arg := range t.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			arg.write(sb)
		}
		sb.WriteByte('>')
	}
	if t.Nullable {
		sb.WriteByte('?')
	}
}

// Equal reports structural equality.
func (t TypeRef) Equal(o TypeRef) bool {
	if t.Package != o.Package || t.Name != o.Name || t.Nullable != o.Nullable ||
		t.Variable != o.Variable || len(t.Args) != len(o.Args) {
		return false
	}
	for i := range t.Args {
		if !t.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	return true
}

// BaseName returns the shortest unqualified head name of t: package, enclosing
// classes and generic arguments are stripped. Pointers are looked through.
// Used for naming only, never for identity.
func BaseName(t TypeRef) string {
	if t.Name == PointerName && len(t.Args) == 1 {
		return BaseName(t.Args[0])
	}
	name := t.Name
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// Deref returns the pointee of a pointer reference, or t itself.
func Deref(t TypeRef) TypeRef {
	if t.Name == PointerName && len(t.Args) == 1 {
		return t.Args[0]
	}
	return t
}

// RelativeName returns the name of t relative to pkg: the in-package dotted name
// when t is declared in pkg, the qualified name otherwise. Generic arguments are
// stripped.
func RelativeName(t TypeRef, pkg string) string {
	if t.Package == pkg {
		return t.Name
	}
	return t.Qualified()
}

// SplitQualified splits a dotted name into package and in-package parts.
// Leading segments that start with a lower-case letter are package segments;
// the first capitalised segment starts the type name. A name without any
// capitalised segment is treated as unqualified.
func SplitQualified(name string) (pkg, rest string) {
	segments := strings.Split(name, ".")
	if len(segments) == 1 {
		return "", name
	}
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		r := []rune(seg)[0]
		if unicode.IsUpper(r) {
			if i == 0 {
				return "", name
			}
			return strings.Join(segments[:i], "."), strings.Join(segments[i:], ".")
		}
	}
	return "", name
}
