// Package gosrc collects declarations from Go packages.
//
// Declarations opt in with a directive line in their doc comment:
//
//	//namedargs:export
//	func Move(x, y int) { ... }
//
// Functions become top-level functions, methods become members of their
// receiver type, and annotated named types become classes whose primary
// constructor is the package function New<Type>. Types that fail to
// type-check are kept and marked unresolved so the processor can defer them.
package gosrc

import (
	"context"
	"go/ast"
	"go/types"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/tools/go/packages"

	"github.com/teranos/namedargs/decl"
	"github.com/teranos/namedargs/errors"
	"github.com/teranos/namedargs/logger"
)

// DefaultDirective marks a declaration for collection.
const DefaultDirective = "//namedargs:export"

// Collector loads Go packages and collects annotated declarations.
type Collector struct {
	directive string
	dir       string
	logger    *zap.SugaredLogger
}

// Option configures a Collector.
type Option func(*Collector)

// WithDirective replaces DefaultDirective.
func WithDirective(directive string) Option {
	return func(c *Collector) {
		if directive != "" {
			c.directive = directive
		}
	}
}

// WithDir sets the directory patterns are resolved in.
func WithDir(dir string) Option {
	return func(c *Collector) { c.dir = dir }
}

// WithLogger sets the logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Collector) { c.logger = l }
}

// New creates a Collector.
func New(opts ...Option) *Collector {
	c := &Collector{directive: DefaultDirective}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logger.OrNop(c.logger)
	return c
}

// Load loads the packages matching patterns (as accepted by go list) and
// collects their annotated declarations. Packages are visited in import path
// order.
func (c *Collector) Load(ctx context.Context, patterns ...string) (decl.Symbols, error) {
	cfg := &packages.Config{
		Context: ctx,
		Dir:     c.dir,
		Mode:    packages.NeedName | packages.NeedTypes | packages.NeedSyntax | packages.NeedTypesInfo,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return decl.Symbols{}, errors.Wrapf(err, "failed to load packages %v", patterns)
	}
	if len(pkgs) == 0 {
		return decl.Symbols{}, errors.Newf("no packages found for %v", patterns)
	}
	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].PkgPath < pkgs[j].PkgPath })

	var symbols decl.Symbols
	for _, pkg := range pkgs {
		if err := c.checkErrors(pkg); err != nil {
			return decl.Symbols{}, err
		}
		out, err := c.collect(pkg)
		if err != nil {
			return decl.Symbols{}, errors.Wrapf(err, "package %s", pkg.PkgPath)
		}
		c.logger.Debugw("Collected package",
			logger.FieldPackage, pkg.PkgPath,
			logger.FieldCount, out.Len())
		symbols.Append(out)
	}
	return symbols, nil
}

// Dirs returns the source directories of the packages matching patterns,
// sorted and without duplicates.
func (c *Collector) Dirs(ctx context.Context, patterns ...string) ([]string, error) {
	cfg := &packages.Config{
		Context: ctx,
		Dir:     c.dir,
		Mode:    packages.NeedName | packages.NeedFiles,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list packages %v", patterns)
	}

	seen := make(map[string]bool)
	var dirs []string
	for _, pkg := range pkgs {
		for _, file := range pkg.GoFiles {
			dir := filepath.Dir(file)
			if !seen[dir] {
				seen[dir] = true
				dirs = append(dirs, dir)
			}
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// checkErrors fails on packages that could not be listed or type-checked at
// all. Parse and type errors only leave invalid types behind, which are
// collected as unresolved.
func (c *Collector) checkErrors(pkg *packages.Package) error {
	hasTypes := pkg.Types != nil && pkg.TypesInfo != nil
	for _, e := range pkg.Errors {
		if !tolerable(e, hasTypes) {
			return errors.WithHint(
				errors.Newf("package %s: %s", pkg.PkgPath, e.Msg),
				"check the package pattern and that the module builds with go list")
		}
		c.logger.Warnw("Package has errors, affected declarations will be deferred",
			logger.FieldPackage, pkg.PkgPath,
			logger.FieldError, e.Msg,
			logger.FieldPath, e.Pos)
	}
	if !hasTypes {
		return errors.Newf("package %s has no type information", pkg.PkgPath)
	}
	return nil
}

// compileErrorEcho prefixes the go list report of a package's compile errors.
const compileErrorEcho = "# "

// tolerable reports whether e still leaves a usable package. go list repeats
// compile errors as a list error headed by "# <pkg>"; those are the same
// errors the type checker reports.
func tolerable(e packages.Error, hasTypes bool) bool {
	switch e.Kind {
	case packages.ParseError, packages.TypeError:
		return true
	case packages.ListError:
		return hasTypes && strings.HasPrefix(e.Msg, compileErrorEcho)
	default:
		return false
	}
}

// pkgCollector collects one package.
type pkgCollector struct {
	c   *Collector
	pkg *packages.Package

	classes map[*types.TypeName]*decl.Class
	order   []*decl.Class
	// annotated are the type declarations carrying the directive.
	annotated map[*types.TypeName]bool
	// ctors are the functions bound as primary constructors, and ctorOf the
	// constructor of each type.
	ctors  map[*types.Func]bool
	ctorOf map[*types.TypeName]*decl.Function
}

func (c *Collector) collect(pkg *packages.Package) (decl.Symbols, error) {
	pc := &pkgCollector{
		c:         c,
		pkg:       pkg,
		classes:   make(map[*types.TypeName]*decl.Class),
		annotated: make(map[*types.TypeName]bool),
		ctors:     make(map[*types.Func]bool),
		ctorOf:    make(map[*types.TypeName]*decl.Function),
	}

	files := append([]*ast.File(nil), pkg.Syntax...)
	sort.SliceStable(files, func(i, j int) bool {
		return pkg.Fset.Position(files[i].Pos()).Filename < pkg.Fset.Position(files[j].Pos()).Filename
	})

	pc.findAnnotatedTypes(files)
	if err := pc.bindConstructors(files); err != nil {
		return decl.Symbols{}, err
	}

	var out decl.Symbols
	for _, file := range files {
		for _, d := range file.Decls {
			switch d := d.(type) {
			case *ast.GenDecl:
				for _, spec := range d.Specs {
					ts, ok := spec.(*ast.TypeSpec)
					if !ok {
						continue
					}
					if obj, ok := pkg.TypesInfo.Defs[ts.Name].(*types.TypeName); ok && pc.annotated[obj] {
						if _, err := pc.class(obj); err != nil {
							return decl.Symbols{}, err
						}
					}
				}

			case *ast.FuncDecl:
				if !c.hasDirective(d.Doc) {
					continue
				}
				fn, ok := pkg.TypesInfo.Defs[d.Name].(*types.Func)
				if !ok {
					c.logger.Warnw("Skipping function without type information",
						logger.FieldSymbol, d.Name.Name,
						logger.FieldPackage, pkg.PkgPath)
					continue
				}
				if pc.ctors[fn] {
					continue
				}
				if d.Recv == nil {
					f, err := pc.function(fn, decl.FunctionTopLevel, nil)
					if err != nil {
						return decl.Symbols{}, err
					}
					out.Functions = append(out.Functions, f)
					continue
				}
				if err := pc.method(fn); err != nil {
					return decl.Symbols{}, err
				}
			}
		}
	}

	for _, cls := range pc.order {
		decl.Link(cls)
	}
	out.Classes = pc.order
	return out, nil
}

// hasDirective reports whether doc carries the directive line.
func (c *Collector) hasDirective(doc *ast.CommentGroup) bool {
	if doc == nil {
		return false
	}
	for _, line := range doc.List {
		text := strings.TrimSpace(line.Text)
		if text == c.directive || strings.HasPrefix(text, c.directive+" ") {
			return true
		}
	}
	return false
}

func (pc *pkgCollector) findAnnotatedTypes(files []*ast.File) {
	for _, file := range files {
		for _, d := range file.Decls {
			gd, ok := d.(*ast.GenDecl)
			if !ok {
				continue
			}
			for _, spec := range gd.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				doc := ts.Doc
				if doc == nil && len(gd.Specs) == 1 {
					doc = gd.Doc
				}
				if !pc.c.hasDirective(doc) {
					continue
				}
				if obj, ok := pc.pkg.TypesInfo.Defs[ts.Name].(*types.TypeName); ok {
					pc.annotated[obj] = true
				}
			}
		}
	}
}

// bindConstructors finds New<Type> for every annotated type. A function binds
// when it has one result, that result is the type or a pointer to it, and its
// type parameters match the type's in number.
func (pc *pkgCollector) bindConstructors(files []*ast.File) error {
	for _, file := range files {
		for _, d := range file.Decls {
			fd, ok := d.(*ast.FuncDecl)
			if !ok || fd.Recv != nil || !strings.HasPrefix(fd.Name.Name, "New") {
				continue
			}
			fn, ok := pc.pkg.TypesInfo.Defs[fd.Name].(*types.Func)
			if !ok {
				continue
			}
			obj := pc.pkg.Types.Scope().Lookup(strings.TrimPrefix(fd.Name.Name, "New"))
			tn, ok := obj.(*types.TypeName)
			if !ok || !pc.annotated[tn] {
				continue
			}

			sig := fn.Type().(*types.Signature)
			if sig.Results().Len() != 1 || namedOf(sig.Results().At(0).Type()) != tn {
				pc.c.logger.Debugw("Not a primary constructor, result is not the type",
					logger.FieldSymbol, fd.Name.Name)
				continue
			}
			named, _ := tn.Type().(*types.Named)
			if named == nil || sig.TypeParams().Len() != named.TypeParams().Len() {
				pc.c.logger.Debugw("Not a primary constructor, type parameters differ",
					logger.FieldSymbol, fd.Name.Name)
				continue
			}

			rename := renameParams(sig.TypeParams(), named.TypeParams())
			ctor, err := pc.function(fn, decl.FunctionMember, rename)
			if err != nil {
				return err
			}
			// Its type parameters are the class's, renamed.
			ctor.TypeParams = nil
			pc.ctorOf[tn] = ctor
			pc.ctors[fn] = true
		}
	}
	return nil
}

// class returns the class for tn, creating it on first use.
func (pc *pkgCollector) class(tn *types.TypeName) (*decl.Class, error) {
	if cls, ok := pc.classes[tn]; ok {
		return cls, nil
	}

	cls := &decl.Class{
		Name:               tn.Name(),
		Package:            pc.pkg.PkgPath,
		Kind:               decl.ClassPlain,
		PrimaryConstructor: pc.ctorOf[tn],
	}
	if _, ok := tn.Type().Underlying().(*types.Interface); ok {
		cls.Kind = decl.ClassInterface
	}
	if named, ok := tn.Type().(*types.Named); ok {
		params, err := pc.typeParams(named.TypeParams(), decl.OwnerClass, nil)
		if err != nil {
			return nil, errors.Wrapf(err, "type %s", tn.Name())
		}
		cls.TypeParams = params
	}

	pc.classes[tn] = cls
	pc.order = append(pc.order, cls)
	return cls, nil
}

func (pc *pkgCollector) method(fn *types.Func) error {
	sig := fn.Type().(*types.Signature)
	recv := sig.Recv()
	if recv == nil {
		return errors.AssertionFailedf("method %s without receiver", fn.Name())
	}
	tn := namedOf(recv.Type())
	if tn == nil {
		pc.c.logger.Warnw("Skipping method on unnamed receiver", logger.FieldSymbol, fn.FullName())
		return nil
	}

	cls, err := pc.class(tn)
	if err != nil {
		return err
	}
	var rename map[*types.TypeParam]string
	if named, ok := tn.Type().(*types.Named); ok {
		rename = renameParams(sig.RecvTypeParams(), named.TypeParams())
	}
	member, err := pc.function(fn, decl.FunctionMember, rename)
	if err != nil {
		return err
	}
	cls.Functions = append(cls.Functions, member)
	return nil
}

func (pc *pkgCollector) function(fn *types.Func, kind decl.FunctionKind, rename map[*types.TypeParam]string) (*decl.Function, error) {
	sig := fn.Type().(*types.Signature)
	out := &decl.Function{
		Name:       fn.Name(),
		Package:    pc.pkg.PkgPath,
		Kind:       kind,
		Visibility: visibility(fn.Name()),
	}

	params, err := pc.typeParams(sig.TypeParams(), decl.OwnerFunction, rename)
	if err != nil {
		return nil, errors.Wrapf(err, "function %s", fn.Name())
	}
	out.TypeParams = params

	for i := 0; i < sig.Params().Len(); i++ {
		v := sig.Params().At(i)
		name := v.Name()
		if name == "" || name == "_" {
			return nil, errors.WithHint(
				errors.Newf("function %s: parameter %d has no name", fn.Name(), i),
				"name every parameter of an exported function")
		}

		t := v.Type()
		variadic := sig.Variadic() && i == sig.Params().Len()-1
		if variadic {
			if s, ok := t.(*types.Slice); ok {
				t = s.Elem()
			}
		}
		expr, err := typeExpr(t, rename)
		if err != nil {
			return nil, errors.Wrapf(err, "function %s: parameter %s", fn.Name(), name)
		}
		out.Params = append(out.Params, decl.Parameter{Name: name, Type: expr, Variadic: variadic})
	}

	ret, err := results(sig.Results(), rename)
	if err != nil {
		return nil, errors.Wrapf(err, "function %s: results", fn.Name())
	}
	out.ReturnType = ret
	return out, nil
}

func (pc *pkgCollector) typeParams(list *types.TypeParamList, owner decl.ParamOwner, rename map[*types.TypeParam]string) ([]decl.TypeParameter, error) {
	if list.Len() == 0 {
		return nil, nil
	}
	out := make([]decl.TypeParameter, 0, list.Len())
	for i := 0; i < list.Len(); i++ {
		tp := list.At(i)
		bounds, err := constraintBounds(tp.Constraint(), rename)
		if err != nil {
			return nil, errors.Wrapf(err, "constraint of %s", tp.Obj().Name())
		}
		out = append(out, decl.TypeParameter{Name: paramName(tp, rename), Bounds: bounds, Owner: owner})
	}
	return out, nil
}

func visibility(name string) decl.Visibility {
	if ast.IsExported(name) {
		return decl.Public
	}
	return decl.Private
}

// namedOf returns the type name of t or *t.
func namedOf(t types.Type) *types.TypeName {
	if p, ok := types.Unalias(t).(*types.Pointer); ok {
		t = p.Elem()
	}
	if named, ok := types.Unalias(t).(*types.Named); ok {
		return named.Origin().Obj()
	}
	return nil
}

// renameParams maps the type parameters a method or constructor declares for
// its receiver onto the names the type itself declares.
func renameParams(from, to *types.TypeParamList) map[*types.TypeParam]string {
	if from.Len() == 0 || from.Len() != to.Len() {
		return nil
	}
	rename := make(map[*types.TypeParam]string, from.Len())
	for i := 0; i < from.Len(); i++ {
		rename[from.At(i)] = to.At(i).Obj().Name()
	}
	return rename
}

func paramName(tp *types.TypeParam, rename map[*types.TypeParam]string) string {
	if name, ok := rename[tp]; ok {
		return name
	}
	return tp.Obj().Name()
}
