package diagfmt

import (
	"encoding/json"
	"io"

	"nsattr/internal/diag"
	"nsattr/internal/source"
)

// LocationJSON is a span resolved to path and line/column coordinates.
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

// NoteJSON is a secondary location with context.
type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// DiagnosticJSON is the machine-readable diagnostic record.
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Title    string       `json:"title"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
}

// JSON renders the bag as an indented JSON array. Call bag.Sort() first
// for deterministic output.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet) error {
	items := bag.Items()
	out := make([]DiagnosticJSON, 0, len(items))
	for _, d := range items {
		dj := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Title:    d.Code.Title(),
			Message:  d.Message,
			Location: locationJSON(fs, d.Primary),
		}
		for _, note := range d.Notes {
			dj.Notes = append(dj.Notes, NoteJSON{
				Message:  note.Msg,
				Location: locationJSON(fs, note.Span),
			})
		}
		out = append(out, dj)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func locationJSON(fs *source.FileSet, sp source.Span) LocationJSON {
	start := fs.Position(sp.File, sp.Start)
	end := fs.Position(sp.File, sp.End)
	return LocationJSON{
		File:      fs.PathOf(sp.File),
		StartByte: sp.Start,
		EndByte:   sp.End,
		StartLine: start.Line,
		StartCol:  start.Col,
		EndLine:   end.Line,
		EndCol:    end.Col,
	}
}
