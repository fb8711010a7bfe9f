// Package unitfile loads translation-unit descriptions from TOML. It is
// the stand-in front end for the CLI and tests: a real compiler would
// feed the scope.Builder and alias.Registry directly from its parser.
//
// A unit file is an ordered list of items, each an alias declaration or
// one namespace block occurrence:
//
//	unit = "a.cpp"
//
//	[[item]]
//	kind = "alias"
//	name = "p::x"
//	attrs = ["nodiscard", "enforce(type_safety)"]
//
//	[[item]]
//	kind = "namespace"
//	path = "math"
//	inline = false
//	attrs = ["p::x"]
//
//	  [[item.decl]]
//	  name = "f"
//	  decl = "fn"        # fn | var | type | dtor
//	  returns = "void"
//	  body = true
//	  attrs = []
//
// Document order is program order: an alias item is visible to every
// later item, never to earlier ones.
package unitfile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"nsattr/internal/alias"
	"nsattr/internal/attr"
	"nsattr/internal/diag"
	"nsattr/internal/scope"
	"nsattr/internal/source"
)

// ErrParse marks malformed unit descriptions, as opposed to plain I/O
// failures. Callers branch on it with errors.Is to pick an error code.
var ErrParse = errors.New("unit description parse error")

// Unit is a loaded translation unit ready for resolution.
type Unit struct {
	Name     string
	FileID   source.FileID
	Tree     *scope.Tree
	Registry *alias.Registry
}

type unitDoc struct {
	Unit  string    `toml:"unit"`
	Items []itemDoc `toml:"item"`
}

type itemDoc struct {
	Kind   string    `toml:"kind"`
	Name   string    `toml:"name"` // alias items
	Path   string    `toml:"path"` // namespace items
	Inline bool      `toml:"inline"`
	Attrs  []string  `toml:"attrs"`
	Decls  []declDoc `toml:"decl"`
}

type declDoc struct {
	Name    string   `toml:"name"`
	Decl    string   `toml:"decl"`
	Returns string   `toml:"returns"`
	Inline  bool     `toml:"inline"`
	Body    bool     `toml:"body"`
	Attrs   []string `toml:"attrs"`
}

// Load reads a unit file from disk. Parse/IO failures are Go errors (the
// file is unusable); alias-definition conflicts inside a well-formed file
// are diagnostics reported through rep, and loading continues.
func Load(fs *source.FileSet, in *source.Interner, path string, rep diag.Reporter) (*Unit, error) {
	fileID, err := fs.Load(path)
	if err != nil {
		return nil, err
	}
	return parse(fs, in, fileID, rep)
}

// LoadVirtual parses an in-memory unit description (tests, stdin).
func LoadVirtual(fs *source.FileSet, in *source.Interner, name string, content []byte, rep diag.Reporter) (*Unit, error) {
	fileID := fs.AddVirtual(name, content)
	return parse(fs, in, fileID, rep)
}

func parse(fs *source.FileSet, in *source.Interner, fileID source.FileID, rep diag.Reporter) (*Unit, error) {
	file := fs.Get(fileID)
	var doc unitDoc
	if err := toml.Unmarshal(file.Content, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", file.Path, ErrParse, err)
	}
	name := doc.Unit
	if name == "" {
		name = file.Path
	}

	loader := &unitLoader{
		fs:      fs,
		in:      in,
		fileID:  fileID,
		content: string(file.Content),
		builder: scope.NewBuilder(in),
		reg:     alias.NewRegistry(in),
		rep:     rep,
	}
	for i := range doc.Items {
		if err := loader.item(&doc.Items[i]); err != nil {
			return nil, fmt.Errorf("%s: %w: %v", file.Path, ErrParse, err)
		}
	}
	return &Unit{
		Name:     name,
		FileID:   fileID,
		Tree:     loader.builder.Finish(),
		Registry: loader.reg,
	}, nil
}

type unitLoader struct {
	fs      *source.FileSet
	in      *source.Interner
	fileID  source.FileID
	content string
	cursor  int // span synthesis: items appear in document order
	builder *scope.Builder
	reg     *alias.Registry
	rep     diag.Reporter
}

func (l *unitLoader) item(it *itemDoc) error {
	switch it.Kind {
	case "alias":
		return l.aliasItem(it)
	case "namespace":
		return l.namespaceItem(it)
	default:
		return fmt.Errorf("unknown item kind %q (want \"alias\" or \"namespace\")", it.Kind)
	}
}

func (l *unitLoader) aliasItem(it *itemDoc) error {
	if it.Name == "" {
		return fmt.Errorf("alias item without a name")
	}
	span := l.spanFor(it.Name)
	target := attr.NewSet()
	for _, text := range it.Attrs {
		a, err := l.parseAttr(text)
		if err != nil {
			return err
		}
		target.Insert(l.in, a)
	}
	pos := l.builder.Tick()
	l.reg.Define(it.Name, target, pos, span, l.rep)
	return nil
}

func (l *unitLoader) namespaceItem(it *itemDoc) error {
	if it.Path == "" {
		return fmt.Errorf("namespace item without a path")
	}
	span := l.spanFor(it.Path)
	raw, err := l.parseAttrs(it.Attrs)
	if err != nil {
		return err
	}

	// "a::b" opens the whole chain; only the last segment carries the
	// block's attributes, mirroring `namespace a { [[...]] namespace b`.
	segments := strings.Split(it.Path, "::")
	for i, seg := range segments {
		if seg == "" {
			return fmt.Errorf("namespace path %q has an empty segment", it.Path)
		}
		last := i == len(segments)-1
		var segAttrs []attr.Attr
		inline := false
		if last {
			segAttrs = raw
			inline = it.Inline
		}
		l.builder.OpenScope(seg, inline, segAttrs, span)
	}

	for i := range it.Decls {
		if err := l.declItem(&it.Decls[i]); err != nil {
			return err
		}
	}

	for range segments {
		l.builder.CloseScope()
	}
	return nil
}

func (l *unitLoader) declItem(d *declDoc) error {
	if d.Name == "" {
		return fmt.Errorf("declaration without a name")
	}
	span := l.spanFor(d.Name)
	raw, err := l.parseAttrs(d.Attrs)
	if err != nil {
		return err
	}
	kind, err := declKind(d.Decl)
	if err != nil {
		return err
	}
	shape := attr.DeclShape{
		Kind:        kind,
		ReturnsVoid: d.Returns == "void" || d.Returns == "",
		Inline:      d.Inline,
		HasBody:     d.Body,
	}
	if kind != attr.DeclFunc {
		shape.ReturnsVoid = false
	}
	l.builder.AddDecl(d.Name, shape, raw, span)
	return nil
}

func declKind(text string) (attr.DeclKind, error) {
	switch text {
	case "fn", "":
		return attr.DeclFunc, nil
	case "var":
		return attr.DeclVar, nil
	case "type":
		return attr.DeclType, nil
	case "dtor":
		return attr.DeclDtor, nil
	default:
		return 0, fmt.Errorf("unknown decl kind %q (want fn, var, type or dtor)", text)
	}
}

func (l *unitLoader) parseAttrs(texts []string) ([]attr.Attr, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	out := make([]attr.Attr, 0, len(texts))
	for _, text := range texts {
		a, err := l.parseAttr(text)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// parseAttr tokenizes `name` or `name(arg, ...)`.
func (l *unitLoader) parseAttr(text string) (attr.Attr, error) {
	span := l.spanFor(text)
	open := strings.IndexByte(text, '(')
	if open < 0 {
		name := strings.TrimSpace(text)
		if name == "" {
			return attr.Attr{}, fmt.Errorf("empty attribute")
		}
		return attr.Attr{Name: l.in.Intern(name), Span: span}, nil
	}
	if !strings.HasSuffix(text, ")") {
		return attr.Attr{}, fmt.Errorf("attribute %q: missing ')'", text)
	}
	name := strings.TrimSpace(text[:open])
	if name == "" {
		return attr.Attr{}, fmt.Errorf("attribute %q: empty name", text)
	}
	var args []string
	inner := text[open+1 : len(text)-1]
	if strings.TrimSpace(inner) != "" {
		for _, arg := range strings.Split(inner, ",") {
			args = append(args, strings.TrimSpace(arg))
		}
	}
	return attr.Attr{Name: l.in.Intern(name), Args: args, Span: span}, nil
}

// spanFor synthesizes a span by locating the literal's next occurrence in
// the document. Items are processed in document order, so a forward-only
// cursor keeps lookups aligned with their TOML source.
func (l *unitLoader) spanFor(literal string) source.Span {
	idx := strings.Index(l.content[l.cursor:], literal)
	if idx < 0 {
		return source.Span{File: l.fileID}
	}
	start := l.cursor + idx
	l.cursor = start
	return source.Span{
		File:  l.fileID,
		Start: uint32(start),
		End:   uint32(start + len(literal)),
	}
}
