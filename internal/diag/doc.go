// Package diag defines the diagnostic model shared by all resolution phases.
//
// Diagnostic is the central record: severity, a stable numeric Code, a
// human-oriented message, the primary source.Span, and optional Notes that
// point at secondary locations (e.g. "previous definition here" for alias
// conflicts, or the first namespace occurrence for consistency violations).
//
// Producers emit through a Reporter so storage stays decoupled: BagReporter
// aggregates into a Bag (sorting, dedup, merging across translation units),
// DedupReporter suppresses exact repeats. Rendering lives in
// internal/diagfmt; this package performs no formatting or IO.
package diag
