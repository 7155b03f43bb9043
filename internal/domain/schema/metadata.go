package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/redisvec/internal/domain"
)

// Kind is the indexing kind of a metadata field.
type Kind string

// Supported metadata kinds.
const (
	Text    Kind = "TEXT"
	Tag     Kind = "TAG"
	Numeric Kind = "NUMERIC"
)

// TagSeparator joins multi-valued tags in the stored hash field.
const TagSeparator = ","

// ParseKind parses a metadata kind case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToUpper(strings.TrimSpace(s))); k {
	case Text, Tag, Numeric:
		return k, nil
	default:
		return "", fmt.Errorf("%w: unknown metadata kind %q", domain.ErrValidation, s)
	}
}

// MetadataField declares one typed auxiliary field.
type MetadataField struct {
	Name string
	Kind Kind
}

// MetadataSchema is an ordered set of declared metadata fields.
type MetadataSchema struct {
	fields []MetadataField
	index  map[string]int
}

// NewMetadata validates fields and fixes their order. Kinds are normalized to upper case.
func NewMetadata(fields ...MetadataField) (MetadataSchema, error) {
	m := MetadataSchema{
		fields: make([]MetadataField, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		if f.Name == "" {
			return MetadataSchema{}, fmt.Errorf("%w: metadata field name is required at index %d", domain.ErrValidation, i)
		}
		if !IsValidName(f.Name) {
			return MetadataSchema{}, fmt.Errorf("%w: invalid metadata field name %q", domain.ErrValidation, f.Name)
		}
		if f.Name == IDField || f.Name == ScoreField {
			return MetadataSchema{}, fmt.Errorf("%w: metadata field name %q is reserved", domain.ErrValidation, f.Name)
		}
		kind, err := ParseKind(string(f.Kind))
		if err != nil {
			return MetadataSchema{}, fmt.Errorf("field %q: %w", f.Name, err)
		}
		if _, dup := m.index[f.Name]; dup {
			return MetadataSchema{}, fmt.Errorf("%w: duplicate metadata field %q", domain.ErrValidation, f.Name)
		}
		m.index[f.Name] = len(m.fields)
		m.fields = append(m.fields, MetadataField{Name: f.Name, Kind: kind})
	}
	return m, nil
}

// Fields returns the declared fields in order.
func (m MetadataSchema) Fields() []MetadataField {
	out := make([]MetadataField, len(m.fields))
	copy(out, m.fields)
	return out
}

// Names returns the metadata projection list in declaration order.
func (m MetadataSchema) Names() []string {
	out := make([]string, len(m.fields))
	for i, f := range m.fields {
		out[i] = f.Name
	}
	return out
}

// Len returns the number of declared fields.
func (m MetadataSchema) Len() int { return len(m.fields) }

// Lookup finds a declared field by name.
func (m MetadataSchema) Lookup(name string) (MetadataField, bool) {
	i, ok := m.index[name]
	if !ok {
		return MetadataField{}, false
	}
	return m.fields[i], true
}

// Validate checks one document's metadata against the schema without rendering it.
func (m MetadataSchema) Validate(meta map[string]any) error {
	_, err := m.Encode(meta)
	return err
}

// Encode renders metadata values into hash field strings.
// Undeclared names and values that do not fit the declared kind are rejected; nil values are skipped.
func (m MetadataSchema) Encode(meta map[string]any) (map[string]string, error) {
	out := make(map[string]string, len(meta))
	for name, v := range meta {
		f, ok := m.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: undeclared metadata field %q", domain.ErrValidation, name)
		}
		if v == nil {
			continue
		}
		s, err := encodeValue(f.Kind, v)
		if err != nil {
			return nil, fmt.Errorf("%w: field %q: %w", domain.ErrValidation, name, err)
		}
		out[name] = s
	}
	return out, nil
}

// Decode converts a stored hash value back into a typed value.
// NUMERIC fields decode to float64; everything else stays a string.
func (m MetadataSchema) Decode(name, raw string) any {
	f, ok := m.Lookup(name)
	if ok && f.Kind == Numeric {
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return n
		}
	}
	return raw
}

func encodeValue(kind Kind, v any) (string, error) {
	switch kind {
	case Numeric:
		return encodeNumeric(v)
	case Tag:
		switch tv := v.(type) {
		case []string:
			return strings.Join(tv, TagSeparator), nil
		case []any:
			parts := make([]string, len(tv))
			for i, p := range tv {
				s, err := encodeScalar(p)
				if err != nil {
					return "", err
				}
				parts[i] = s
			}
			return strings.Join(parts, TagSeparator), nil
		}
		return encodeScalar(v)
	default:
		return encodeScalar(v)
	}
}

func encodeNumeric(v any) (string, error) {
	switch n := v.(type) {
	case int:
		return strconv.Itoa(n), nil
	case int32:
		return strconv.FormatInt(int64(n), 10), nil
	case int64:
		return strconv.FormatInt(n, 10), nil
	case uint:
		return strconv.FormatUint(uint64(n), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(n), 10), nil
	case uint64:
		return strconv.FormatUint(n, 10), nil
	case float32:
		return strconv.FormatFloat(float64(n), 'g', -1, 32), nil
	case float64:
		return strconv.FormatFloat(n, 'g', -1, 64), nil
	case string:
		if _, err := strconv.ParseFloat(n, 64); err != nil {
			return "", fmt.Errorf("value %q is not numeric", n)
		}
		return n, nil
	default:
		return "", fmt.Errorf("value of type %T is not numeric", v)
	}
}

func encodeScalar(v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case fmt.Stringer:
		return s.String(), nil
	case bool:
		return strconv.FormatBool(s), nil
	case int, int32, int64, uint, uint32, uint64, float32, float64:
		return encodeNumeric(v)
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}
