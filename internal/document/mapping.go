package document

import (
	"regexp"
	"strings"
)

// Pair is one key/value extracted from a source document.
type Pair struct {
	Key   string
	Value string
}

// Mapping is the generic key/value view of a parsed document. Keys are
// path-style ("medication.name", "history/allergies") and preserve insertion
// order. A key may appear more than once; repetition is how repeated source
// elements (XML siblings, JSON array members, CSV rows) are represented.
type Mapping struct {
	pairs []Pair
	index map[string][]int
}

func NewMapping() *Mapping {
	return &Mapping{index: make(map[string][]int)}
}

// Add appends a pair. Duplicate keys are allowed.
func (m *Mapping) Add(key, value string) {
	m.index[key] = append(m.index[key], len(m.pairs))
	m.pairs = append(m.pairs, Pair{Key: key, Value: value})
}

// Get returns the first value for key.
func (m *Mapping) Get(key string) (string, bool) {
	idx, ok := m.index[key]
	if !ok || len(idx) == 0 {
		return "", false
	}
	return m.pairs[idx[0]].Value, true
}

// All returns every value for key in insertion order.
func (m *Mapping) All(key string) []string {
	idx := m.index[key]
	if len(idx) == 0 {
		return nil
	}
	values := make([]string, 0, len(idx))
	for _, i := range idx {
		values = append(values, m.pairs[i].Value)
	}
	return values
}

// Has reports whether key occurs at least once.
func (m *Mapping) Has(key string) bool {
	return len(m.index[key]) > 0
}

// Count returns the number of occurrences of key.
func (m *Mapping) Count(key string) int {
	return len(m.index[key])
}

// Len returns the total number of pairs.
func (m *Mapping) Len() int {
	return len(m.pairs)
}

// Pairs returns all pairs in insertion order.
func (m *Mapping) Pairs() []Pair {
	out := make([]Pair, len(m.pairs))
	copy(out, m.pairs)
	return out
}

// Keys returns the distinct keys in first-insertion order.
func (m *Mapping) Keys() []string {
	seen := make(map[string]bool, len(m.index))
	var keys []string
	for _, p := range m.pairs {
		if !seen[p.Key] {
			seen[p.Key] = true
			keys = append(keys, p.Key)
		}
	}
	return keys
}

// Text flattens all values into a single newline-joined string. Used for
// content hashing.
func (m *Mapping) Text() string {
	var sb strings.Builder
	for _, p := range m.pairs {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(p.Key)
		sb.WriteString("=")
		sb.WriteString(p.Value)
	}
	return sb.String()
}

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9-]`)
	slugDashes  = regexp.MustCompile(`-+`)
)

// Slugify converts a string to a path-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugInvalid.ReplaceAllString(s, "-")
	s = slugDashes.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 50 {
		s = s[:50]
	}
	return s
}
