package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"nsattr/internal/diag"
	"nsattr/internal/source"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan, color.Bold)
	noteColor    = color.New(color.FgBlue)
	caretColor   = color.New(color.FgGreen, color.Bold)
)

// Pretty renders diagnostics in a human-readable form. Call bag.Sort()
// beforehand for deterministic order. For each diagnostic:
//
//	<path>:<line>:<col>: <SEV> [<CODE>]: <message>
//
// followed, when opts.Context is set, by the source line with a ^~~~
// underline over the span, then notes in the same shape.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	for _, d := range bag.Items() {
		writeHeading(w, fs, d, opts)
		if opts.Context {
			writeContext(w, fs, d.Primary, opts)
		}
		for _, note := range d.Notes {
			fmt.Fprintf(w, "  %s: %s: %s\n", locate(fs, note.Span), paint(noteColor, "note", opts), note.Msg)
			if opts.Context {
				writeContext(w, fs, note.Span, opts)
			}
		}
	}
}

func writeHeading(w io.Writer, fs *source.FileSet, d diag.Diagnostic, opts PrettyOpts) {
	sev := d.Severity.String()
	switch d.Severity {
	case diag.SevError:
		sev = paint(errorColor, sev, opts)
	case diag.SevWarning:
		sev = paint(warningColor, sev, opts)
	default:
		sev = paint(infoColor, sev, opts)
	}
	fmt.Fprintf(w, "%s: %s [%s]: %s\n", locate(fs, d.Primary), sev, d.Code.ID(), d.Message)
}

// writeContext prints the span's first source line and underlines it.
func writeContext(w io.Writer, fs *source.FileSet, sp source.Span, opts PrettyOpts) {
	if sp.Empty() && sp.Start == 0 {
		return
	}
	pos := fs.Position(sp.File, sp.Start)
	text := fs.LineText(sp.File, pos.Line)
	if text == "" {
		return
	}
	lineNo := fmt.Sprintf("%5d", pos.Line)
	fmt.Fprintf(w, "%s | %s\n", lineNo, text)

	// Align the caret under the span start; runewidth keeps the column
	// right when the prefix contains wide runes or tabs.
	prefix := text
	if int(pos.Col-1) <= len(text) {
		prefix = text[:pos.Col-1]
	}
	pad := runewidth.StringWidth(strings.ReplaceAll(prefix, "\t", "    "))
	length := int(sp.Len())
	if length < 1 {
		length = 1
	}
	if length > len(text)-len(prefix) && len(text) >= len(prefix) {
		length = len(text) - len(prefix)
		if length < 1 {
			length = 1
		}
	}
	underline := "^" + strings.Repeat("~", length-1)
	fmt.Fprintf(w, "%s | %s%s\n", strings.Repeat(" ", len(lineNo)), strings.Repeat(" ", pad), paint(caretColor, underline, opts))
}

func locate(fs *source.FileSet, sp source.Span) string {
	pos := fs.Position(sp.File, sp.Start)
	path := fs.PathOf(sp.File)
	if path == "" {
		path = "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", path, pos.Line, pos.Col)
}

func paint(c *color.Color, s string, opts PrettyOpts) string {
	if !opts.Color {
		return s
	}
	return c.Sprint(s)
}
