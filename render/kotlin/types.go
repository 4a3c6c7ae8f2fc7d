package kotlin

import (
	"sort"
	"strings"

	"github.com/teranos/namedargs/resolve"
)

// defaultImports are packages every Kotlin file sees without an import.
var defaultImports = map[string]bool{
	"kotlin":             true,
	"kotlin.collections": true,
	"kotlin.ranges":      true,
	"kotlin.sequences":   true,
	"kotlin.text":        true,
}

// GoBuiltins maps Go predeclared types, as produced by the Go collector, to
// Kotlin types.
var GoBuiltins = map[string]resolve.TypeRef{
	"string":  {Package: "kotlin", Name: "String"},
	"bool":    {Package: "kotlin", Name: "Boolean"},
	"byte":    {Package: "kotlin", Name: "Byte"},
	"rune":    {Package: "kotlin", Name: "Int"},
	"int":     {Package: "kotlin", Name: "Int"},
	"int8":    {Package: "kotlin", Name: "Byte"},
	"int16":   {Package: "kotlin", Name: "Short"},
	"int32":   {Package: "kotlin", Name: "Int"},
	"int64":   {Package: "kotlin", Name: "Long"},
	"uint":    {Package: "kotlin", Name: "UInt"},
	"uint8":   {Package: "kotlin", Name: "UByte"},
	"uint16":  {Package: "kotlin", Name: "UShort"},
	"uint32":  {Package: "kotlin", Name: "UInt"},
	"uint64":  {Package: "kotlin", Name: "ULong"},
	"float32": {Package: "kotlin", Name: "Float"},
	"float64": {Package: "kotlin", Name: "Double"},
	"any":     {Package: "kotlin", Name: "Any", Nullable: true},
	"error":   {Package: "kotlin", Name: "Throwable", Nullable: true},
}

// keywords are hard Kotlin keywords that must be escaped as identifiers.
var keywords = map[string]bool{
	"as": true, "break": true, "class": true, "continue": true, "do": true,
	"else": true, "false": true, "for": true, "fun": true, "if": true,
	"in": true, "interface": true, "is": true, "null": true, "object": true,
	"package": true, "return": true, "super": true, "this": true, "throw": true,
	"true": true, "try": true, "typealias": true, "typeof": true, "val": true,
	"var": true, "when": true, "while": true,
}

// escape backquotes identifiers that collide with a keyword.
func escape(name string) string {
	if keywords[name] {
		return "`" + name + "`"
	}
	return name
}

// importer tracks the imports needed by one file. The first package to claim a
// simple name wins; later references with the same head stay qualified.
type importer struct {
	pkg    string
	byHead map[string]string
}

func newImporter(pkg string, reserved ...string) *importer {
	im := &importer{pkg: pkg, byHead: make(map[string]string)}
	for _, name := range reserved {
		im.byHead[name] = pkg
	}
	return im
}

// name returns how ref's name is spelled in the file. References to the
// file's own package claim their head too, so an import can never shadow them.
func (im *importer) name(ref resolve.TypeRef) string {
	if ref.Package == "" {
		return ref.Name
	}
	head := ref.Name
	if i := strings.IndexByte(head, '.'); i >= 0 {
		head = head[:i]
	}
	if owner, ok := im.byHead[head]; ok && owner != ref.Package {
		return ref.Qualified()
	}
	im.byHead[head] = ref.Package
	return ref.Name
}

// lines returns sorted import paths, excluding default imports.
func (im *importer) lines() []string {
	var out []string
	for head, pkg := range im.byHead {
		if pkg == im.pkg || defaultImports[pkg] {
			continue
		}
		out = append(out, pkg+"."+head)
	}
	sort.Strings(out)
	return out
}

// typeName renders ref as Kotlin source.
func (im *importer) typeName(ref resolve.TypeRef) string {
	var sb strings.Builder
	im.write(&sb, ref)
	return sb.String()
}

func (im *importer) write(sb *strings.Builder, ref resolve.TypeRef) {
	switch {
	case ref.Variable:
		sb.WriteString(ref.Name)

	case ref.Name == resolve.PointerName && len(ref.Args) == 1:
		elem := ref.Args[0]
		elem.Nullable = true
		im.write(sb, elem)
		return

	case ref.Name == resolve.SliceName && len(ref.Args) == 1:
		sb.WriteString("Array<out ")
		im.write(sb, ref.Args[0])
		sb.WriteByte('>')

	case ref.Name == resolve.MapName && len(ref.Args) == 2:
		sb.WriteString("Map<")
		im.write(sb, ref.Args[0])
		sb.WriteString(", ")
		im.write(sb, ref.Args[1])
		sb.WriteByte('>')

	case ref.Name == resolve.FuncName && len(ref.Args) > 0:
		params, results := ref.Args[:len(ref.Args)-1], ref.Args[len(ref.Args)-1]
		if ref.Nullable {
			sb.WriteByte('(')
		}
		sb.WriteByte('(')
		for i, arg := range params {
			if i > 0 {
				sb.WriteString(", ")
			}
			im.write(sb, arg)
		}
		sb.WriteString(") -> ")
		im.write(sb, results)
		if ref.Nullable {
			sb.WriteString(")?")
		}
		return

	case ref.Name == resolve.TupleName:
		switch len(ref.Args) {
		case 0:
			sb.WriteString(im.name(resolve.TypeRef{Package: "kotlin", Name: "Unit"}))
		case 1:
			im.write(sb, ref.Args[0])
		case 2, 3:
			head := "Pair"
			if len(ref.Args) == 3 {
				head = "Triple"
			}
			sb.WriteString(im.name(resolve.TypeRef{Package: "kotlin", Name: head}))
			sb.WriteByte('<')
			for i, arg := range ref.Args {
				if i > 0 {
					sb.WriteString(", ")
				}
				im.write(sb, arg)
			}
			sb.WriteByte('>')
		default:
			sb.WriteString(im.name(resolve.TypeRef{Package: "kotlin.collections", Name: "List"}))
			sb.WriteString("<Any?>")
		}

	default:
		if mapped, ok := GoBuiltins[ref.Name]; ok && ref.Package == "" {
			mapped.Nullable = mapped.Nullable || ref.Nullable
			im.write(sb, mapped)
			return
		}
		sb.WriteString(im.name(ref))
		if len(ref.Args) > 0 {
			sb.WriteByte('<')
			for i, arg := range ref.Args {
				if i > 0 {
					sb.WriteString(", ")
				}
				im.write(sb, arg)
			}
			sb.WriteByte('>')
		}
	}

	if ref.Nullable {
		sb.WriteByte('?')
	}
}

// typeParams renders the declaration-site type parameter list and, when a
// parameter has more than one bound, the trailing where clause.
func (im *importer) typeParams(params []resolve.TypeParam) (decl, where string) {
	if len(params) == 0 {
		return "", ""
	}
	var parts, constraints []string
	for _, p := range params {
		switch len(p.Bounds) {
		case 0:
			parts = append(parts, p.Name)
		case 1:
			parts = append(parts, p.Name+" : "+im.typeName(p.Bounds[0]))
		default:
			parts = append(parts, p.Name)
			for _, b := range p.Bounds {
				constraints = append(constraints, p.Name+" : "+im.typeName(b))
			}
		}
	}
	decl = "<" + strings.Join(parts, ", ") + ">"
	if len(constraints) > 0 {
		where = " where " + strings.Join(constraints, ", ")
	}
	return decl, where
}
