package validation

// Gender values accepted by the Gender field.
const (
	GenderUnknown = 0
	GenderMale    = 1
	GenderFemale  = 2
)

type namedField struct {
	name  string
	field *Field
}

// Schema is an ordered set of named fields plus an optional schema-level
// rule. It is immutable configuration once built and safe for concurrent
// use across requests.
type Schema struct {
	fields  []namedField
	ruleKey string
	rule    func(*BoundRequest) string
}

// NewSchema starts an empty schema builder.
func NewSchema() *Schema {
	return &Schema{}
}

// Add appends a field in declaration order and returns the schema for
// chaining.
func (s *Schema) Add(name string, field *Field) *Schema {
	s.fields = append(s.fields, namedField{name: name, field: field})
	return s
}

// Rule installs a cross-field rule run only when every per-field check
// passed. A non-empty return value is recorded as an error under key.
func (s *Schema) Rule(key string, rule func(*BoundRequest) string) *Schema {
	s.ruleKey = key
	s.rule = rule
	return s
}

// BoundRequest is the result of applying a Schema to a raw mapping. It
// owns its values and error map exclusively.
type BoundRequest struct {
	values   map[string]interface{}
	errors   map[string]string
	nonEmpty []string
}

// Bind cleans every declared field against the raw mapping. Per-field
// failures are recorded and never abort the bind; every field is attempted.
func (s *Schema) Bind(raw map[string]interface{}) *BoundRequest {
	b := &BoundRequest{
		values: make(map[string]interface{}, len(s.fields)),
		errors: make(map[string]string),
	}

	for _, nf := range s.fields {
		value, ferr := nf.field.Clean(raw[nf.name])
		if ferr != nil {
			b.errors[nf.name] = ferr.Message
			continue
		}
		b.values[nf.name] = value
		if !isEmpty(value) {
			b.nonEmpty = append(b.nonEmpty, nf.name)
		}
	}

	if len(b.errors) == 0 && s.rule != nil {
		if msg := s.rule(b); msg != "" {
			b.errors[s.ruleKey] = msg
		}
	}

	return b
}

// Valid reports whether the bind produced no errors.
func (b *BoundRequest) Valid() bool {
	return len(b.errors) == 0
}

// Errors returns the field name to message map.
func (b *BoundRequest) Errors() map[string]string {
	return b.errors
}

// NonEmpty returns the names of fields whose cleaned value was non-empty,
// in declaration order.
func (b *BoundRequest) NonEmpty() []string {
	return b.nonEmpty
}

// Has reports whether the field's cleaned value was non-empty.
func (b *BoundRequest) Has(name string) bool {
	for _, f := range b.nonEmpty {
		if f == name {
			return true
		}
	}
	return false
}

// Value returns the canonical value assigned for the field, if any.
func (b *BoundRequest) Value(name string) (interface{}, bool) {
	v, ok := b.values[name]
	return v, ok
}

// String returns the field value as a string, or "" when absent or empty.
func (b *BoundRequest) String(name string) string {
	s, _ := b.values[name].(string)
	return s
}

// Int returns the field value as an int; ok is false when absent or empty.
func (b *BoundRequest) Int(name string) (int, bool) {
	n, ok := b.values[name].(int)
	return n, ok
}

// IDs returns the field value as an integer list, or nil.
func (b *BoundRequest) IDs(name string) []int64 {
	ids, _ := b.values[name].([]int64)
	return ids
}

// Mapping returns the field value as an object, or nil.
func (b *BoundRequest) Mapping(name string) map[string]interface{} {
	m, _ := b.values[name].(map[string]interface{})
	return m
}
