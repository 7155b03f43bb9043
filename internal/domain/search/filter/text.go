package filter

import (
	"strings"

	"github.com/kailas-cloud/redisvec/internal/domain/schema"
)

// TextField builds predicates over a TEXT field.
type TextField struct{ name string }

// Text starts a TEXT predicate.
func Text(name string) TextField { return TextField{name: name} }

// Eq matches the exact phrase.
func (f TextField) Eq(phrase string) Expression {
	if phrase == "" {
		return invalid("text filter on %q needs a phrase", f.name)
	}
	return leaf(f.name, schema.Text, `@`+f.name+`:("`+phraseEscaper.Replace(phrase)+`")`)
}

// Ne excludes the exact phrase.
func (f TextField) Ne(phrase string) Expression {
	if phrase == "" {
		return invalid("text filter on %q needs a phrase", f.name)
	}
	return leaf(f.name, schema.Text, `(-@`+f.name+`:"`+phraseEscaper.Replace(phrase)+`")`)
}

// Like matches a term pattern; "*" and "%" wildcards are passed through.
func (f TextField) Like(pattern string) Expression {
	if strings.TrimSpace(pattern) == "" {
		return invalid("text filter on %q needs a pattern", f.name)
	}
	return leaf(f.name, schema.Text, "@"+f.name+":("+pattern+")")
}

var phraseEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)
