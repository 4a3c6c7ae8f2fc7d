package manifest

import (
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/namedargs/decl"
	"github.com/teranos/namedargs/errors"
	"github.com/teranos/namedargs/logger"
	"github.com/teranos/namedargs/version"
)

// Simple names visible without an import.
var builtins = map[string]string{
	"Any":         "kotlin",
	"Array":       "kotlin",
	"Boolean":     "kotlin",
	"Byte":        "kotlin",
	"Char":        "kotlin",
	"Comparable":  "kotlin",
	"Double":      "kotlin",
	"Float":       "kotlin",
	"Int":         "kotlin",
	"Long":        "kotlin",
	"Nothing":     "kotlin",
	"Number":      "kotlin",
	"Short":       "kotlin",
	"String":      "kotlin",
	"Unit":        "kotlin",
	"Collection":  "kotlin.collections",
	"Iterable":    "kotlin.collections",
	"List":        "kotlin.collections",
	"Map":         "kotlin.collections",
	"MutableList": "kotlin.collections",
	"MutableMap":  "kotlin.collections",
	"MutableSet":  "kotlin.collections",
	"Set":         "kotlin.collections",
}

// Collector converts manifests into declaration symbols.
type Collector struct {
	logger       *zap.SugaredLogger
	checkVersion func(constraint string) error
}

// Option configures a Collector.
type Option func(*Collector)

// WithLogger sets the logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Collector) { c.logger = l }
}

// WithVersionCheck replaces the generator constraint check. The default checks
// against the running build.
func WithVersionCheck(check func(constraint string) error) Option {
	return func(c *Collector) { c.checkVersion = check }
}

// New creates a Collector.
func New(opts ...Option) *Collector {
	c := &Collector{checkVersion: version.CheckConstraint}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logger.OrNop(c.logger)
	return c
}

// Load reads every manifest in paths and collects them together, so classes
// declared in one manifest resolve in the others.
func (c *Collector) Load(paths ...string) (decl.Symbols, error) {
	files := make([]*File, 0, len(paths))
	for _, path := range paths {
		f, err := ReadFile(path)
		if err != nil {
			return decl.Symbols{}, err
		}
		files = append(files, f)
	}
	return c.Collect(files...)
}

// Collect converts files in order. Within a file, functions come before classes.
func (c *Collector) Collect(files ...*File) (decl.Symbols, error) {
	known := make(map[string]struct{})
	for _, f := range files {
		if err := c.checkVersion(f.Generator); err != nil {
			return decl.Symbols{}, errors.Wrapf(err, "%s", f.source())
		}
		for _, cls := range f.Classes {
			indexClass(known, f.Package, "", cls)
		}
	}

	var symbols decl.Symbols
	for _, f := range files {
		b := &builder{file: f, known: known}
		out, err := b.build()
		if err != nil {
			return decl.Symbols{}, errors.Wrapf(err, "%s", f.source())
		}
		c.logger.Debugw("Collected manifest",
			logger.FieldFile, f.source(),
			logger.FieldPackage, f.Package,
			logger.FieldCount, out.Len())
		symbols.Append(out)
	}
	return symbols, nil
}

func indexClass(known map[string]struct{}, pkg, prefix string, cls Class) {
	name := cls.Name
	if prefix != "" {
		name = prefix + "." + cls.Name
	}
	known[pkg+"."+name] = struct{}{}
	for _, nested := range cls.Nested {
		indexClass(known, pkg, name, nested)
	}
}

// builder converts one manifest.
type builder struct {
	file  *File
	known map[string]struct{}
}

// scope is the lexical context of a declaration: type parameter names visible
// at that point and the nested name of the enclosing class.
type scope struct {
	params []string
	class  string
}

func (s scope) with(params []TypeParam) scope {
	names := make([]string, 0, len(s.params)+len(params))
	names = append(names, s.params...)
	for _, p := range params {
		names = append(names, p.Name)
	}
	return scope{params: names, class: s.class}
}

func (s scope) has(name string) bool {
	for _, p := range s.params {
		if p == name {
			return true
		}
	}
	return false
}

func (b *builder) build() (decl.Symbols, error) {
	var out decl.Symbols
	for _, f := range b.file.Functions {
		fn, err := b.function(f, decl.FunctionTopLevel, scope{})
		if err != nil {
			return decl.Symbols{}, err
		}
		out.Functions = append(out.Functions, fn)
	}
	for _, c := range b.file.Classes {
		cls, err := b.class(c, scope{})
		if err != nil {
			return decl.Symbols{}, err
		}
		decl.Link(cls)
		out.Classes = append(out.Classes, cls)
	}
	return out, nil
}

func (b *builder) class(c Class, outer scope) (*decl.Class, error) {
	if c.Name == "" {
		return nil, errors.New("class without a name")
	}
	kind, ok := decl.ParseClassKind(c.Kind)
	if !ok {
		return nil, errors.Newf("class %s: unknown kind %q", c.Name, c.Kind)
	}

	nested := c.Name
	if outer.class != "" {
		nested = outer.class + "." + c.Name
	}

	// Only inner classes see the type parameters of their enclosing classes.
	sc := scope{class: nested}
	if c.Inner {
		sc.params = outer.params
	}
	sc = sc.with(c.TypeParams)

	typeParams, err := b.typeParams(c.TypeParams, decl.OwnerClass, sc)
	if err != nil {
		return nil, errors.Wrapf(err, "class %s", nested)
	}

	cls := &decl.Class{
		Name:       c.Name,
		Package:    b.file.Package,
		Kind:       kind,
		Inner:      c.Inner,
		TypeParams: typeParams,
	}

	if c.Constructor != nil {
		vis, ok := decl.ParseVisibility(c.Constructor.Visibility)
		if !ok {
			return nil, errors.Newf("constructor of %s: unknown visibility %q", nested, c.Constructor.Visibility)
		}
		params, err := b.params(c.Constructor.Params, sc)
		if err != nil {
			return nil, errors.Wrapf(err, "constructor of %s", nested)
		}
		cls.PrimaryConstructor = &decl.Function{
			Name:       "<init>",
			Kind:       decl.FunctionMember,
			Params:     params,
			Visibility: vis,
		}
	}

	for _, f := range c.Functions {
		fn, err := b.function(f, decl.FunctionMember, sc)
		if err != nil {
			return nil, errors.Wrapf(err, "class %s", nested)
		}
		cls.Functions = append(cls.Functions, fn)
	}

	for _, n := range c.Nested {
		child, err := b.class(n, sc)
		if err != nil {
			return nil, err
		}
		cls.Nested = append(cls.Nested, child)
	}
	return cls, nil
}

func (b *builder) function(f Function, defaultKind decl.FunctionKind, outer scope) (*decl.Function, error) {
	if f.Name == "" {
		return nil, errors.New("function without a name")
	}
	kind := defaultKind
	if f.Kind != "" {
		k, ok := decl.ParseFunctionKind(f.Kind)
		if !ok {
			return nil, errors.Newf("function %s: unknown kind %q", f.Name, f.Kind)
		}
		kind = k
	}
	vis, ok := decl.ParseVisibility(f.Visibility)
	if !ok {
		return nil, errors.Newf("function %s: unknown visibility %q", f.Name, f.Visibility)
	}

	sc := outer.with(f.TypeParams)
	typeParams, err := b.typeParams(f.TypeParams, decl.OwnerFunction, sc)
	if err != nil {
		return nil, errors.Wrapf(err, "function %s", f.Name)
	}
	params, err := b.params(f.Params, sc)
	if err != nil {
		return nil, errors.Wrapf(err, "function %s", f.Name)
	}

	fn := &decl.Function{
		Name:       f.Name,
		Package:    b.file.Package,
		Kind:       kind,
		Params:     params,
		TypeParams: typeParams,
		Visibility: vis,
	}
	if f.Returns != "" {
		ret, err := b.typeExpr(f.Returns, sc)
		if err != nil {
			return nil, errors.Wrapf(err, "return type of %s", f.Name)
		}
		fn.ReturnType = &ret
	}
	return fn, nil
}

func (b *builder) params(in []Param, sc scope) ([]decl.Parameter, error) {
	if len(in) == 0 {
		return nil, nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]decl.Parameter, 0, len(in))
	for i, p := range in {
		if p.Name == "" {
			return nil, errors.Newf("parameter %d has no name", i)
		}
		if _, dup := seen[p.Name]; dup {
			return nil, errors.Newf("duplicate parameter %s", p.Name)
		}
		seen[p.Name] = struct{}{}

		t, err := b.typeExpr(p.Type, sc)
		if err != nil {
			return nil, errors.Wrapf(err, "parameter %s", p.Name)
		}
		out = append(out, decl.Parameter{Name: p.Name, Type: t, Variadic: p.Vararg})
	}
	return out, nil
}

func (b *builder) typeParams(in []TypeParam, owner decl.ParamOwner, sc scope) ([]decl.TypeParameter, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make([]decl.TypeParameter, 0, len(in))
	for _, p := range in {
		if p.Name == "" {
			return nil, errors.New("type parameter without a name")
		}
		tp := decl.TypeParameter{Name: p.Name, Owner: owner}
		for _, bound := range p.Bounds {
			t, err := b.typeExpr(bound, sc)
			if err != nil {
				return nil, errors.Wrapf(err, "bound of %s", p.Name)
			}
			tp.Bounds = append(tp.Bounds, t)
		}
		out = append(out, tp)
	}
	return out, nil
}

func (b *builder) typeExpr(s string, sc scope) (decl.TypeExpr, error) {
	if strings.TrimSpace(s) == "" {
		return decl.TypeExpr{}, errors.WithStack(errors.ErrEmptyTypeName)
	}
	syntax, err := parseType(s)
	if err != nil {
		return decl.TypeExpr{}, err
	}
	return b.bind(syntax, sc), nil
}

// bind resolves the names in t. Names that match nothing are kept and marked
// unresolved.
func (b *builder) bind(t typeSyntax, sc scope) decl.TypeExpr {
	expr := b.name(t.name, sc)
	expr.Nullable = t.nullable
	for _, arg := range t.args {
		expr.Args = append(expr.Args, b.bind(arg, sc))
	}
	return expr
}

func (b *builder) name(name string, sc scope) decl.TypeExpr {
	first, rest, dotted := strings.Cut(name, ".")

	if !dotted {
		if sc.has(name) {
			return decl.Var(name)
		}
		if pkg, ok := builtins[name]; ok {
			return decl.TypeExpr{Name: pkg + "." + name}
		}
	}

	// Imports bind the first segment of a name.
	for _, imp := range b.file.Imports {
		if imp == first || strings.HasSuffix(imp, "."+first) {
			if dotted {
				return decl.TypeExpr{Name: imp + "." + rest}
			}
			return decl.TypeExpr{Name: imp}
		}
	}

	// Classes of this package, searched from the enclosing class outward.
	pkg := b.file.Package
	for prefix := sc.class; ; {
		candidate := name
		if prefix != "" {
			candidate = prefix + "." + name
		}
		if _, ok := b.known[pkg+"."+candidate]; ok {
			return decl.TypeExpr{Name: candidate, Package: pkg}
		}
		if prefix == "" {
			break
		}
		if i := strings.LastIndexByte(prefix, '.'); i >= 0 {
			prefix = prefix[:i]
		} else {
			prefix = ""
		}
	}

	if dotted {
		// Written fully qualified.
		return decl.TypeExpr{Name: name}
	}
	return decl.TypeExpr{Name: name, Unresolved: true}
}
