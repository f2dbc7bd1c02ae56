// Package crux extracts structured metadata and the main readable article
// from HTML documents.
//
// An extraction runs an ordered list of plugins over a Resource. Each plugin
// contributes a partial Resource that is merged into the running result, or
// replaces the document being processed (for example when an AMP page is
// resolved to its canonical source).
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, http/, sqlite/).
package crux
