package atom

// NameValue is one named value of a NameValues record.
type NameValue struct {
	Name  string
	Value string
}

// NameValues is an ordered set of named values. Order is insertion order;
// duplicate names are kept and Get returns the first.
type NameValues struct {
	pairs []NameValue
}

// NewNameValuesFrom pairs names with values position by position. Extra
// values without a name are dropped; missing values are empty.
func NewNameValuesFrom(names, values []string) NameValues {
	pairs := make([]NameValue, len(names))
	for i, n := range names {
		pairs[i].Name = n
		if i < len(values) {
			pairs[i].Value = values[i]
		}
	}
	return NameValues{pairs: pairs}
}

// Add appends a pair.
func (nv *NameValues) Add(name, value string) {
	nv.pairs = append(nv.pairs, NameValue{Name: name, Value: value})
}

// Len returns the number of pairs.
func (nv NameValues) Len() int { return len(nv.pairs) }

// At returns pair i. ok is false when i is out of range.
func (nv NameValues) At(i int) (NameValue, bool) {
	if i < 0 || i >= len(nv.pairs) {
		return NameValue{}, false
	}
	return nv.pairs[i], true
}

// Get returns the first value stored under name.
func (nv NameValues) Get(name string) (string, bool) {
	for _, p := range nv.pairs {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// Names returns the names in order.
func (nv NameValues) Names() []string {
	out := make([]string, len(nv.pairs))
	for i, p := range nv.pairs {
		out[i] = p.Name
	}
	return out
}

// Values returns the values in order.
func (nv NameValues) Values() []string {
	out := make([]string, len(nv.pairs))
	for i, p := range nv.pairs {
		out[i] = p.Value
	}
	return out
}
