// Package typescript renders units as TypeScript declaration files for the
// JS consumer of the exported wrappers.
package typescript

import (
	"fmt"
	"strings"

	"github.com/teranos/namedargs/emit"
	"github.com/teranos/namedargs/errors"
	"github.com/teranos/namedargs/resolve"
)

// ReceiverParam names the leading parameter that carries the receiver of an
// extension wrapper in the exported JS signature.
const ReceiverParam = "receiver"

// Generator implements render.Generator for TypeScript declarations
type Generator struct{}

// NewGenerator creates a new TypeScript generator
func NewGenerator() *Generator {
	return &Generator{}
}

// Language returns "typescript"
func (g *Generator) Language() string {
	return "typescript"
}

// FileExtension returns "d.ts"
func (g *Generator) FileExtension() string {
	return "d.ts"
}

// TypeMapping defines how source types map to TypeScript types. Keys are
// qualified names from both Kotlin manifests and the Go collector.
var TypeMapping = map[string]string{
	// Kotlin
	"kotlin.String":  "string",
	"kotlin.Char":    "string",
	"kotlin.Boolean": "boolean",
	"kotlin.Byte":    "number",
	"kotlin.Short":   "number",
	"kotlin.Int":     "number",
	"kotlin.Float":   "number",
	"kotlin.Double":  "number",
	"kotlin.Long":    "bigint",
	"kotlin.Any":     "unknown",
	"kotlin.Unit":    "void",
	"kotlin.Nothing": "never",
	// Go
	"string":    "string",
	"bool":      "boolean",
	"int":       "number",
	"int8":      "number",
	"int16":     "number",
	"int32":     "number",
	"int64":     "number",
	"uint":      "number",
	"uint8":     "number",
	"uint16":    "number",
	"uint32":    "number",
	"uint64":    "number",
	"byte":      "number",
	"rune":      "number",
	"float32":   "number",
	"float64":   "number",
	"any":       "unknown",
	"error":     "Error | null",
	"time.Time": "string",
}

// arrayTypes render as T[].
var arrayTypes = map[string]bool{
	"kotlin.Array":                   true,
	"kotlin.collections.List":        true,
	"kotlin.collections.MutableList": true,
	"kotlin.collections.Collection":  true,
	"kotlin.collections.Set":         true,
	"kotlin.collections.Iterable":    true,
}

// recordTypes render as Record<K, V>.
var recordTypes = map[string]bool{
	"kotlin.collections.Map":        true,
	"kotlin.collections.MutableMap": true,
}

// GenerateFile renders the carrier interface and wrapper declaration of unit.
func (g *Generator) GenerateFile(unit *emit.Unit) (string, error) {
	if unit == nil {
		return "", errors.AssertionFailedf("typescript: nil unit")
	}

	var sb strings.Builder
	sb.WriteString("/* eslint-disable */\n")
	sb.WriteString(fmt.Sprintf("// Code generated by namedargs from %s. DO NOT EDIT.\n", unit.Origin))
	if unit.Key.Package != "" {
		sb.WriteString(fmt.Sprintf("// Source package: %s\n", unit.Key.Package))
	}
	sb.WriteString("\n")

	sb.WriteString(GenerateInterface(unit.Carrier))
	sb.WriteString("\n\n")
	sb.WriteString(GenerateWrapper(unit.Wrapper))
	sb.WriteString("\n")
	return sb.String(), nil
}

// GenerateInterface creates a readonly TypeScript interface for a carrier
func GenerateInterface(c emit.Carrier) string {
	var sb strings.Builder

	export := ""
	if c.Exported {
		export = "export "
	}
	sb.WriteString(fmt.Sprintf("%sinterface %s%s {\n", export, c.Name, typeParams(c.TypeParams)))
	for _, f := range c.Fields {
		sb.WriteString(fmt.Sprintf("  readonly %s: %s;\n", f.Name, TypeName(f.Type)))
	}
	sb.WriteString("}")

	return sb.String()
}

// GenerateWrapper creates the function declaration for a wrapper. A receiver
// becomes the leading parameter, as extension functions are exported to JS.
func GenerateWrapper(w emit.Wrapper) string {
	var params []string
	if w.Receiver != nil {
		params = append(params, fmt.Sprintf("%s: %s", ReceiverParam, TypeName(*w.Receiver)))
	}
	params = append(params, fmt.Sprintf("%s: %s", w.Param.Name, TypeName(w.Param.Type)))

	returns := "void"
	if w.Returns != nil {
		returns = TypeName(*w.Returns)
	}

	export := ""
	if w.Exported {
		export = "export "
	}
	return fmt.Sprintf("%sdeclare function %s%s(%s): %s;",
		export, w.Name, typeParams(w.TypeParams), strings.Join(params, ", "), returns)
}

// TypeName converts a resolved type reference to a TypeScript type string
func TypeName(ref resolve.TypeRef) string {
	ts := typeName(ref)
	if ref.Nullable && !strings.HasSuffix(ts, "| null") {
		ts += " | null"
	}
	return ts
}

func typeName(ref resolve.TypeRef) string {
	if ref.Variable {
		return ref.Name
	}

	switch {
	case ref.Name == resolve.PointerName && len(ref.Args) == 1:
		// Pointer type - nullable underlying type
		elem := TypeName(ref.Args[0])
		if strings.HasSuffix(elem, "| null") {
			return elem
		}
		return elem + " | null"

	case ref.Name == resolve.SliceName && len(ref.Args) == 1:
		return arrayOf(ref.Args[0])

	case ref.Name == resolve.MapName && len(ref.Args) == 2:
		return fmt.Sprintf("Record<%s, %s>", TypeName(ref.Args[0]), TypeName(ref.Args[1]))

	case ref.Name == resolve.TupleName:
		switch len(ref.Args) {
		case 0:
			return "void"
		case 1:
			return TypeName(ref.Args[0])
		}
		elems := make([]string, len(ref.Args))
		for i, arg := range ref.Args {
			elems[i] = TypeName(arg)
		}
		return "[" + strings.Join(elems, ", ") + "]"

	case ref.Name == resolve.FuncName && len(ref.Args) > 0:
		n := len(ref.Args) - 1
		params := make([]string, n)
		for i := 0; i < n; i++ {
			params[i] = fmt.Sprintf("p%d: %s", i, TypeName(ref.Args[i]))
		}
		fn := fmt.Sprintf("(%s) => %s", strings.Join(params, ", "), TypeName(ref.Args[n]))
		if ref.Nullable {
			return "(" + fn + ")"
		}
		return fn
	}

	qualified := ref.Qualified()
	if ts, ok := TypeMapping[qualified]; ok {
		return ts
	}
	if arrayTypes[qualified] && len(ref.Args) == 1 {
		return arrayOf(ref.Args[0])
	}
	if recordTypes[qualified] && len(ref.Args) == 2 {
		return fmt.Sprintf("Record<%s, %s>", TypeName(ref.Args[0]), TypeName(ref.Args[1]))
	}
	if fn, ok := functionType(ref); ok {
		return fn
	}

	// Unknown reference: its simple name, assumed declared alongside
	name := resolve.BaseName(ref)
	if len(ref.Args) == 0 {
		return name
	}
	args := make([]string, len(ref.Args))
	for i, arg := range ref.Args {
		args[i] = TypeName(arg)
	}
	return name + "<" + strings.Join(args, ", ") + ">"
}

func arrayOf(elem resolve.TypeRef) string {
	ts := TypeName(elem)
	if strings.ContainsAny(ts, " |") {
		ts = "(" + ts + ")"
	}
	return ts + "[]"
}

// functionType renders kotlin.FunctionN<P1, ..., PN, R> as an arrow type.
func functionType(ref resolve.TypeRef) (string, bool) {
	if ref.Package != "kotlin" || !strings.HasPrefix(ref.Name, "Function") || len(ref.Args) == 0 {
		return "", false
	}
	n := len(ref.Args) - 1
	if ref.Name != fmt.Sprintf("Function%d", n) {
		return "", false
	}
	params := make([]string, n)
	for i := 0; i < n; i++ {
		params[i] = fmt.Sprintf("p%d: %s", i, TypeName(ref.Args[i]))
	}
	return fmt.Sprintf("(%s) => %s", strings.Join(params, ", "), TypeName(ref.Args[n])), true
}

func typeParams(params []resolve.TypeParam) string {
	if len(params) == 0 {
		return ""
	}
	parts := make([]string, len(params))
	for i, p := range params {
		switch len(p.Bounds) {
		case 0:
			parts[i] = p.Name
		default:
			bounds := make([]string, len(p.Bounds))
			for j, b := range p.Bounds {
				bounds[j] = TypeName(b)
			}
			parts[i] = p.Name + " extends " + strings.Join(bounds, " & ")
		}
	}
	return "<" + strings.Join(parts, ", ") + ">"
}
