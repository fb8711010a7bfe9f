package diagfmt

// PrettyOpts controls human-readable rendering.
type PrettyOpts struct {
	// Color enables ANSI colors for severities and carets.
	Color bool
	// Context prints the offending source line with a caret underline.
	Context bool
}
