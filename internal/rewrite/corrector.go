package rewrite

import "github.com/gnolang/rmlint/internal/syntax"

// Corrector accumulates corrections for a single buffer.
type Corrector struct {
	source      []byte
	corrections []Correction
}

// NewCorrector returns a corrector for source.
func NewCorrector(source []byte) *Corrector {
	return &Corrector{source: source}
}

// Replace schedules the replacement of span with text.
func (c *Corrector) Replace(span syntax.Span, text string) {
	c.corrections = append(c.corrections, Correction{Span: span, Replacement: text})
}

// ReplaceNode schedules the replacement of n's source range with text.
func (c *Corrector) ReplaceNode(n syntax.Node, text string) {
	c.Replace(n.Span(), text)
}

// Insert schedules text to be inserted at offset.
func (c *Corrector) Insert(offset int, text string) {
	c.Replace(syntax.NewSpan(offset, offset), text)
}

// Remove schedules the deletion of span.
func (c *Corrector) Remove(span syntax.Span) {
	c.Replace(span, "")
}

// Source returns the verbatim text of n in the corrector's buffer.
func (c *Corrector) Source(n syntax.Node) string {
	return n.Span().Text(c.source)
}

// Corrections returns a copy of the scheduled corrections.
func (c *Corrector) Corrections() []Correction {
	return append([]Correction(nil), c.corrections...)
}

// Apply applies everything scheduled so far to the corrector's buffer.
func (c *Corrector) Apply() (string, error) {
	return ApplyAll(string(c.source), c.corrections)
}
