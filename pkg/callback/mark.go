package callback

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"reflect"
	"runtime"
	"strings"

	"golang.org/x/tools/go/ast/astutil"
)

// DirectivePrefix marks comment lines that annotate callbacks for tooling.
// Lines starting with it are stripped from extracted source.
const DirectivePrefix = "//globe:"

// ExtractionError reports that a function's source could not be captured.
type ExtractionError struct {
	Func   string
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	name := e.Func
	if name == "" {
		name = "<unknown>"
	}
	if e.Err != nil {
		return fmt.Sprintf("callback %s: %s: %v", name, e.Reason, e.Err)
	}
	return fmt.Sprintf("callback %s: %s", name, e.Reason)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Func pairs a function with the spec the renderer executes in its place.
type Func[F any] struct {
	fn   F
	spec Spec
}

// Fn returns the original, locally callable function.
func (f Func[F]) Fn() F { return f.fn }

// Spec returns the wire description of the function.
func (f Func[F]) Spec() Spec { return f.spec }

// CallbackSpec implements Resolvable.
func (f Func[F]) CallbackSpec() Spec { return f.spec }

// WireValue implements the extension encoder contract.
func (f Func[F]) WireValue() any { return f.spec.Wire() }

// MarkOption customizes Mark.
type MarkOption func(*markOptions)

type markOptions struct {
	name     string
	readFile func(string) ([]byte, error)
}

// WithName overrides the callback name exposed on the wire.
func WithName(name string) MarkOption {
	return func(o *markOptions) { o.name = strings.TrimSpace(name) }
}

// WithSourceReader replaces os.ReadFile for locating function source.
func WithSourceReader(read func(string) ([]byte, error)) MarkOption {
	return func(o *markOptions) {
		if read != nil {
			o.readFile = read
		}
	}
}

// Mark captures fn's source text and returns it paired with fn. Marking the
// same function twice yields equal specs.
func Mark[F any](fn F, opts ...MarkOption) (Func[F], error) {
	o := markOptions{readFile: os.ReadFile}
	for _, opt := range opts {
		opt(&o)
	}
	name, source, err := extract(fn, o.readFile)
	if err != nil {
		return Func[F]{}, err
	}
	if o.name != "" {
		name = o.name
	}
	return Func[F]{fn: fn, spec: Spec{Name: name, Source: source}}, nil
}

// MustMark is Mark for package-level declarations; it panics on failure.
func MustMark[F any](fn F, opts ...MarkOption) Func[F] {
	marked, err := Mark(fn, opts...)
	if err != nil {
		panic(err)
	}
	return marked
}

func extract(fn any, readFile func(string) ([]byte, error)) (string, string, error) {
	value := reflect.ValueOf(fn)
	if !value.IsValid() || value.Kind() != reflect.Func {
		return "", "", &ExtractionError{Reason: fmt.Sprintf("%T is not a function", fn)}
	}
	if value.IsNil() {
		return "", "", &ExtractionError{Reason: "nil function"}
	}
	pc := value.Pointer()
	rf := runtime.FuncForPC(pc)
	if rf == nil {
		return "", "", &ExtractionError{Reason: "no runtime information"}
	}
	fullName := rf.Name()
	short := shortName(fullName)
	file, line := rf.FileLine(pc)
	if file == "" || strings.HasPrefix(file, "<") {
		return "", "", &ExtractionError{Func: short, Reason: "source file unavailable"}
	}
	if strings.HasSuffix(short, "-fm") {
		return "", "", &ExtractionError{Func: short, Reason: "method values cannot be marshaled"}
	}
	src, err := readFile(file)
	if err != nil {
		return "", "", &ExtractionError{Func: short, Reason: "source file unavailable", Err: err}
	}
	fset := token.NewFileSet()
	parsed, err := parser.ParseFile(fset, file, src, parser.ParseComments)
	if err != nil {
		return "", "", &ExtractionError{Func: short, Reason: "source does not parse", Err: err}
	}

	var node ast.Node
	name := short
	if isClosure(short) {
		lit, err := findLiteral(fset, parsed, line, short)
		if err != nil {
			return "", "", err
		}
		enclosing, pkgVars := capturedVars(parsed, lit)
		if err := captureError(short, enclosing, pkgVars); err != nil {
			return "", "", err
		}
		node = lit
		name = strings.NewReplacer(".", "_").Replace(short)
	} else {
		decl := findDecl(parsed, short)
		if decl == nil || decl.Body == nil {
			return "", "", &ExtractionError{Func: short, Reason: "declaration not found in " + file}
		}
		enclosing, pkgVars := capturedVars(parsed, decl)
		if err := captureError(short, enclosing, pkgVars); err != nil {
			return "", "", err
		}
		node = decl
		name = decl.Name.Name
	}

	start := fset.Position(node.Pos())
	end := fset.Position(node.End())
	text := stripDirectives(dedent(string(src[start.Offset:end.Offset]), start.Column-1))
	if strings.TrimSpace(text) == "" {
		return "", "", &ExtractionError{Func: short, Reason: "extracted source is empty"}
	}
	return name, text, nil
}

// shortName trims the import path and generic instantiation suffix from a
// runtime function name: "example.com/pkg.Outer.func1" becomes "Outer.func1".
func shortName(full string) string {
	if idx := strings.LastIndex(full, "/"); idx >= 0 {
		full = full[idx+1:]
	}
	if idx := strings.Index(full, "."); idx >= 0 {
		full = full[idx+1:]
	}
	return strings.ReplaceAll(full, "[...]", "")
}

func isClosure(short string) bool {
	parts := strings.Split(short, ".")
	if len(parts) < 2 {
		return false
	}
	last := parts[len(parts)-1]
	return strings.HasPrefix(last, "func") || strings.HasPrefix(last, "gowrap")
}

func findDecl(file *ast.File, short string) *ast.FuncDecl {
	for _, d := range file.Decls {
		decl, ok := d.(*ast.FuncDecl)
		if !ok || decl.Recv != nil {
			continue
		}
		if decl.Name.Name == short {
			return decl
		}
	}
	return nil
}

func findLiteral(fset *token.FileSet, file *ast.File, line int, short string) (*ast.FuncLit, error) {
	var matches []*ast.FuncLit
	ast.Inspect(file, func(n ast.Node) bool {
		lit, ok := n.(*ast.FuncLit)
		if ok && fset.Position(lit.Pos()).Line == line {
			matches = append(matches, lit)
		}
		return true
	})
	switch len(matches) {
	case 0:
		return nil, &ExtractionError{Func: short, Reason: fmt.Sprintf("no function literal at line %d", line)}
	case 1:
		return matches[0], nil
	default:
		return nil, &ExtractionError{Func: short, Reason: fmt.Sprintf("ambiguous: %d function literals at line %d", len(matches), line)}
	}
}

// capturedVars lists variables referenced inside fn but declared outside it,
// split into those owned by an enclosing function and package-level ones.
// The enclosing declaration is located with astutil.
func capturedVars(file *ast.File, fn ast.Node) (enclosing, pkg []string) {
	path, _ := astutil.PathEnclosingInterval(file, fn.Pos(), fn.End())
	var outer ast.Node
	for i := 1; i < len(path); i++ {
		n := path[i]
		if decl, ok := n.(*ast.FuncDecl); ok {
			outer = decl
			break
		}
	}
	seen := map[string]struct{}{}
	ast.Inspect(fn, func(n ast.Node) bool {
		ident, ok := n.(*ast.Ident)
		if !ok || ident.Obj == nil || ident.Obj.Kind != ast.Var {
			return true
		}
		decl, ok := ident.Obj.Decl.(ast.Node)
		if !ok || (decl.Pos() >= fn.Pos() && decl.End() <= fn.End()) {
			return true
		}
		if _, dup := seen[ident.Name]; dup {
			return true
		}
		seen[ident.Name] = struct{}{}
		if outer != nil && decl.Pos() >= outer.Pos() && decl.End() <= outer.End() {
			enclosing = append(enclosing, ident.Name)
		} else {
			pkg = append(pkg, ident.Name)
		}
		return true
	})
	return enclosing, pkg
}

func captureError(short string, enclosing, pkg []string) error {
	switch {
	case len(enclosing) > 0:
		return &ExtractionError{Func: short, Reason: "captures enclosing variables " + strings.Join(enclosing, ", ")}
	case len(pkg) > 0:
		return &ExtractionError{Func: short, Reason: "references package variables " + strings.Join(pkg, ", ")}
	}
	return nil
}

func dedent(text string, indent int) string {
	lines := strings.Split(text, "\n")
	for i := 1; i < len(lines); i++ {
		lines[i] = trimIndent(lines[i], indent)
	}
	return strings.Join(lines, "\n")
}

func trimIndent(line string, indent int) string {
	n := 0
	for n < len(line) && n < indent && (line[n] == '\t' || line[n] == ' ') {
		n++
	}
	return line[n:]
}

func stripDirectives(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), DirectivePrefix) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
