// Package golang renders units as Go source: a carrier struct with json tags
// and a wrapper that forwards the fields positionally.
package golang

import (
	"fmt"
	"go/format"
	"path"
	"sort"
	"strings"

	"github.com/teranos/namedargs/emit"
	"github.com/teranos/namedargs/errors"
	"github.com/teranos/namedargs/naming"
	"github.com/teranos/namedargs/resolve"
)

// receiverName is the receiver identifier of generated methods.
const receiverName = "r"

// Generator implements render.Generator for Go
type Generator struct{}

// NewGenerator creates a new Go generator
func NewGenerator() *Generator {
	return &Generator{}
}

// Language returns "go"
func (g *Generator) Language() string {
	return "go"
}

// FileExtension returns "go"
func (g *Generator) FileExtension() string {
	return "go"
}

// RelPath places the file under the import path, named after the carrier in
// snake case.
func (g *Generator) RelPath(key emit.Key) string {
	return path.Join(key.Package, naming.ToSnakeCase(key.Name)+".go")
}

// KotlinTypes maps Kotlin builtins from manifests onto Go types.
var KotlinTypes = map[string]string{
	"kotlin.String":  "string",
	"kotlin.Char":    "rune",
	"kotlin.Boolean": "bool",
	"kotlin.Byte":    "int8",
	"kotlin.Short":   "int16",
	"kotlin.Int":     "int",
	"kotlin.Long":    "int64",
	"kotlin.Float":   "float32",
	"kotlin.Double":  "float64",
	"kotlin.Any":     "any",
}

// GenerateFile renders the carrier struct and wrapper of unit, gofmt-formatted.
func (g *Generator) GenerateFile(unit *emit.Unit) (string, error) {
	if unit == nil {
		return "", errors.AssertionFailedf("go: nil unit")
	}
	im := newImporter(unit.Key.Package)

	var body strings.Builder
	writeCarrier(&body, im, unit.Carrier, unit.Wrapper.Call.Source)
	body.WriteString("\n")
	if err := writeWrapper(&body, im, unit.Wrapper); err != nil {
		return "", errors.Wrapf(err, "render %s", unit.Key)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("// Code generated by namedargs from %s. DO NOT EDIT.\n\n", unit.Origin))
	sb.WriteString("package " + PackageName(unit.Key.Package) + "\n\n")
	if imports := im.lines(); len(imports) > 0 {
		sb.WriteString("import (\n")
		for _, imp := range imports {
			sb.WriteString("\t" + imp + "\n")
		}
		sb.WriteString(")\n\n")
	}
	sb.WriteString(body.String())

	formatted, err := format.Source([]byte(sb.String()))
	if err != nil {
		return "", errors.WithDetail(
			errors.Wrapf(err, "format %s", unit.Key),
			sb.String())
	}
	return string(formatted), nil
}

func writeCarrier(sb *strings.Builder, im *importer, c emit.Carrier, source string) {
	sb.WriteString(fmt.Sprintf("// %s holds the arguments of %s by name.\n", c.Name, source))
	sb.WriteString(fmt.Sprintf("type %s%s struct {\n", c.Name, im.typeParams(c.TypeParams)))
	for _, f := range c.Fields {
		sb.WriteString(fmt.Sprintf("\t%s %s `json:\"%s\"`\n", naming.Exported(f.Name), im.typeName(f.Type), f.Name))
	}
	sb.WriteString("}\n")
}

func writeWrapper(sb *strings.Builder, im *importer, w emit.Wrapper) error {
	name := w.Name
	if w.Exported {
		name = naming.Exported(name)
	}

	var callee string
	switch w.Call.Kind {
	case emit.CallFunction:
		callee = w.Call.Target + typeArgs(w.TypeParams)
	case emit.CallMethod:
		if w.Receiver == nil {
			return errors.AssertionFailedf("method wrapper %s without receiver", w.Name)
		}
		callee = receiverName + "." + w.Call.Target
	case emit.CallConstructor:
		// Type parameters used only in the result cannot be inferred
		callee = w.Call.Source + typeArgs(w.TypeParams)
	default:
		return errors.Newf("%s calls are not expressible in Go", w.Call.Kind)
	}

	sb.WriteString(fmt.Sprintf("// %s calls %s with the fields of %s.\n", name, w.Call.Source, w.Param.Name))
	sb.WriteString("func ")
	if w.Receiver != nil {
		sb.WriteString(fmt.Sprintf("(%s %s) ", receiverName, im.typeName(*w.Receiver)))
		sb.WriteString(name)
	} else {
		sb.WriteString(name + im.typeParams(w.TypeParams))
	}
	sb.WriteString(fmt.Sprintf("(%s %s)", w.Param.Name, im.typeName(w.Param.Type)))
	if w.Returns != nil {
		sb.WriteString(" " + im.typeName(*w.Returns))
	}
	sb.WriteString(" {\n\t")
	if w.Returns != nil {
		sb.WriteString("return ")
	}

	args := make([]string, len(w.Call.Args))
	for i, arg := range w.Call.Args {
		args[i] = w.Param.Name + "." + naming.Exported(arg.Field)
		if arg.Spread {
			args[i] += "..."
		}
	}
	sb.WriteString(callee + "(" + strings.Join(args, ", ") + ")\n}\n")
	return nil
}

func typeArgs(params []resolve.TypeParam) string {
	if len(params) == 0 {
		return ""
	}
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return "[" + strings.Join(names, ", ") + "]"
}

// PackageName derives the package clause from an import path, skipping a
// trailing major-version element.
func PackageName(importPath string) string {
	elems := strings.Split(strings.Trim(importPath, "/"), "/")
	name := elems[len(elems)-1]
	if len(elems) > 1 && isMajorVersion(name) {
		name = elems[len(elems)-2]
	}
	if i := strings.Index(name, ".v"); i > 0 && isMajorVersion(name[i+1:]) {
		name = name[:i]
	}
	name = strings.TrimPrefix(name, "go-")

	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			sb.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			sb.WriteRune(r + ('a' - 'A'))
		}
	}
	if sb.Len() == 0 {
		return "generated"
	}
	return sb.String()
}

func isMajorVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// importer tracks the imports needed by one file, aliasing clashing package
// names with a numeric suffix.
type importer struct {
	pkg     string
	aliases map[string]string // import path -> name used in the file
	used    map[string]bool
}

func newImporter(pkg string) *importer {
	return &importer{
		pkg:     pkg,
		aliases: make(map[string]string),
		used:    map[string]bool{PackageName(pkg): true},
	}
}

func (im *importer) qualifier(importPath string) string {
	if alias, ok := im.aliases[importPath]; ok {
		return alias
	}
	base := PackageName(importPath)
	alias := base
	for i := 2; im.used[alias]; i++ {
		alias = fmt.Sprintf("%s%d", base, i)
	}
	im.used[alias] = true
	im.aliases[importPath] = alias
	return alias
}

func (im *importer) lines() []string {
	paths := make([]string, 0, len(im.aliases))
	for p := range im.aliases {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	out := make([]string, len(paths))
	for i, p := range paths {
		if im.aliases[p] == PackageName(p) && path.Base(p) == PackageName(p) {
			out[i] = fmt.Sprintf("%q", p)
		} else {
			out[i] = fmt.Sprintf("%s %q", im.aliases[p], p)
		}
	}
	return out
}

func (im *importer) typeName(ref resolve.TypeRef) string {
	var sb strings.Builder
	im.write(&sb, ref)
	return sb.String()
}

func (im *importer) write(sb *strings.Builder, ref resolve.TypeRef) {
	if ref.Nullable && !ref.Variable && ref.Name != resolve.PointerName {
		sb.WriteByte('*')
	}

	switch {
	case ref.Variable:
		sb.WriteString(ref.Name)

	case ref.Name == resolve.PointerName && len(ref.Args) == 1:
		sb.WriteByte('*')
		im.write(sb, ref.Args[0])

	case ref.Name == resolve.SliceName && len(ref.Args) == 1:
		sb.WriteString("[]")
		im.write(sb, ref.Args[0])

	case ref.Name == resolve.MapName && len(ref.Args) == 2:
		sb.WriteString("map[")
		im.write(sb, ref.Args[0])
		sb.WriteByte(']')
		im.write(sb, ref.Args[1])

	case ref.Name == resolve.FuncName && len(ref.Args) > 0:
		params, results := ref.Args[:len(ref.Args)-1], ref.Args[len(ref.Args)-1]
		sb.WriteString("func(")
		for i, arg := range params {
			if i > 0 {
				sb.WriteString(", ")
			}
			im.write(sb, arg)
		}
		sb.WriteByte(')')
		switch {
		case results.Name != resolve.TupleName:
			sb.WriteByte(' ')
			im.write(sb, results)
		case len(results.Args) == 1:
			sb.WriteByte(' ')
			im.write(sb, results.Args[0])
		case len(results.Args) > 1:
			sb.WriteByte(' ')
			im.write(sb, results)
		}

	case ref.Name == resolve.TupleName:
		sb.WriteByte('(')
		for i, arg := range ref.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			im.write(sb, arg)
		}
		sb.WriteByte(')')

	default:
		if goType, ok := KotlinTypes[ref.Qualified()]; ok {
			sb.WriteString(goType)
			return
		}
		if ref.Package == "kotlin.collections" && (ref.Name == "List" || ref.Name == "Set") && len(ref.Args) == 1 {
			sb.WriteString("[]")
			im.write(sb, ref.Args[0])
			return
		}
		if ref.Package == "kotlin.collections" && ref.Name == "Map" && len(ref.Args) == 2 {
			im.write(sb, resolve.TypeRef{Name: resolve.MapName, Args: ref.Args})
			return
		}

		if ref.Package != "" && ref.Package != im.pkg {
			sb.WriteString(im.qualifier(ref.Package) + ".")
		}
		sb.WriteString(strings.ReplaceAll(ref.Name, ".", ""))
		if len(ref.Args) > 0 {
			sb.WriteByte('[')
			for i, arg := range ref.Args {
				if i > 0 {
					sb.WriteString(", ")
				}
				im.write(sb, arg)
			}
			sb.WriteByte(']')
		}
	}
}

func (im *importer) typeParams(params []resolve.TypeParam) string {
	if len(params) == 0 {
		return ""
	}
	parts := make([]string, len(params))
	for i, p := range params {
		constraint := "any"
		switch len(p.Bounds) {
		case 0:
		case 1:
			constraint = im.typeName(p.Bounds[0])
		default:
			bounds := make([]string, len(p.Bounds))
			for j, b := range p.Bounds {
				bounds[j] = im.typeName(b)
			}
			constraint = "interface{ " + strings.Join(bounds, "; ") + " }"
		}
		parts[i] = p.Name + " " + constraint
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
