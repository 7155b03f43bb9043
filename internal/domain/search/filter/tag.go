package filter

import (
	"strings"

	"github.com/kailas-cloud/redisvec/internal/domain/schema"
)

// TagField builds predicates over a TAG field.
type TagField struct{ name string }

// Tag starts a TAG predicate.
func Tag(name string) TagField { return TagField{name: name} }

// Eq matches records carrying any of values.
func (f TagField) Eq(values ...string) Expression {
	set, ok := tagSet(values)
	if !ok {
		return invalid("tag filter on %q needs at least one non-empty value", f.name)
	}
	return leaf(f.name, schema.Tag, "@"+f.name+":{"+set+"}")
}

// Ne matches records carrying none of values.
func (f TagField) Ne(values ...string) Expression {
	set, ok := tagSet(values)
	if !ok {
		return invalid("tag filter on %q needs at least one non-empty value", f.name)
	}
	return leaf(f.name, schema.Tag, "(-@"+f.name+":{"+set+"})")
}

func tagSet(values []string) (string, bool) {
	escaped := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		escaped = append(escaped, tagEscaper.Replace(v))
	}
	return strings.Join(escaped, "|"), len(escaped) > 0
}

var tagEscaper = strings.NewReplacer(
	`\`, `\\`,
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"[", "\\[",
	"]", "\\]",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"|", "\\|",
	"/", "\\/",
	" ", "\\ ",
)
