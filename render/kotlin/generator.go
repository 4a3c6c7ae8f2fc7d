// Package kotlin renders units as Kotlin/JS source: an exported external
// interface for the carrier and an inline wrapper function.
package kotlin

import (
	"fmt"
	"strings"

	"github.com/teranos/namedargs/emit"
	"github.com/teranos/namedargs/errors"
	"github.com/teranos/namedargs/resolve"
)

const (
	jsPackage            = "kotlin.js"
	jsExport             = "JsExport"
	experimentalJsExport = "ExperimentalJsExport"
	indent               = "  "
)

// Generator implements render.Generator for Kotlin
type Generator struct{}

// NewGenerator creates a new Kotlin generator
func NewGenerator() *Generator {
	return &Generator{}
}

// Language returns "kotlin"
func (g *Generator) Language() string {
	return "kotlin"
}

// FileExtension returns "kt"
func (g *Generator) FileExtension() string {
	return "kt"
}

// GenerateFile renders the carrier interface and wrapper function of unit.
func (g *Generator) GenerateFile(unit *emit.Unit) (string, error) {
	if unit == nil {
		return "", errors.AssertionFailedf("kotlin: nil unit")
	}
	im := newImporter(unit.Key.Package, unit.Carrier.Name)

	var exportAnnotations string
	if unit.Exported {
		im.name(annotation(experimentalJsExport))
		im.name(annotation(jsExport))
		exportAnnotations = "@" + experimentalJsExport + "\n@" + jsExport + "\n"
	}

	var body strings.Builder
	writeCarrier(&body, im, unit.Carrier, exportAnnotations)
	body.WriteString("\n")
	writeWrapper(&body, im, unit.Wrapper, exportAnnotations)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("// Code generated by namedargs from %s. DO NOT EDIT.\n", unit.Origin))
	if len(unit.Suppress) > 0 {
		sb.WriteString("@file:Suppress(" + quoteAll(unit.Suppress) + ")\n")
	}
	sb.WriteString("\n")
	if unit.Key.Package != "" {
		sb.WriteString("package " + unit.Key.Package + "\n\n")
	}
	if imports := im.lines(); len(imports) > 0 {
		for _, imp := range imports {
			sb.WriteString("import " + imp + "\n")
		}
		sb.WriteString("\n")
	}
	sb.WriteString(body.String())
	return sb.String(), nil
}

func writeCarrier(sb *strings.Builder, im *importer, c emit.Carrier, annotations string) {
	typeParams, where := im.typeParams(c.TypeParams)

	sb.WriteString(annotations)
	sb.WriteString(fmt.Sprintf("public external interface %s%s%s {\n", c.Name, typeParams, where))
	for i, f := range c.Fields {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("%spublic val %s: %s\n", indent, escape(f.Name), im.typeName(f.Type)))
	}
	sb.WriteString("}\n")
}

func writeWrapper(sb *strings.Builder, im *importer, w emit.Wrapper, annotations string) {
	typeParams, where := im.typeParams(w.TypeParams)

	sb.WriteString("@Suppress(\"NOTHING_TO_INLINE\")\n")
	sb.WriteString(annotations)
	sb.WriteString("public inline fun ")
	if typeParams != "" {
		sb.WriteString(typeParams + " ")
	}
	if w.Receiver != nil {
		sb.WriteString(im.typeName(*w.Receiver) + ".")
	}
	sb.WriteString(fmt.Sprintf("%s(%s: %s)", w.Name, w.Param.Name, im.typeName(w.Param.Type)))
	if w.Returns != nil {
		sb.WriteString(": " + im.typeName(*w.Returns))
	}
	sb.WriteString(where)
	sb.WriteString(" {\n")

	sb.WriteString(indent)
	if w.Returns != nil {
		sb.WriteString("return ")
	}
	switch w.Call.Kind {
	case emit.CallMethod, emit.CallInnerConstructor:
		sb.WriteString("this.")
	}
	sb.WriteString(w.Call.Target + "(\n")
	for _, arg := range w.Call.Args {
		spread := ""
		if arg.Spread {
			spread = "*"
		}
		sb.WriteString(fmt.Sprintf("%s%s%s = %s%s.%s,\n",
			indent, indent, escape(arg.Param), spread, w.Param.Name, escape(arg.Field)))
	}
	sb.WriteString(indent + ")\n")
	sb.WriteString("}\n")
}

func annotation(name string) resolve.TypeRef {
	return resolve.TypeRef{Package: jsPackage, Name: name}
}

func quoteAll(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(quoted, ", ")
}
