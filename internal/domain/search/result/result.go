package result

import "github.com/kailas-cloud/redisvec/internal/domain/document"

// Result is a single search hit: the translated document, the engine distance, and the
// relevance derived from it.
type Result struct {
	doc       document.Document
	rawScore  float64
	relevance float64
}

// New creates a search result.
func New(doc document.Document, rawScore, relevance float64) Result {
	return Result{doc: doc, rawScore: rawScore, relevance: relevance}
}

// Document returns the translated document.
func (r *Result) Document() document.Document { return r.doc }

// RawScore returns the engine distance (smaller is closer).
func (r *Result) RawScore() float64 { return r.rawScore }

// Relevance returns the metric-specific relevance score.
func (r *Result) Relevance() float64 { return r.relevance }
