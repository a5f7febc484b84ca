package wpl

import "wparse/internal/expr"

// DataField is a single named, typed value extracted by a rule.
type DataField struct {
	Name  string
	Value FieldValue
}

// DataRecord is the ordered output of a rule evaluation.
type DataRecord struct {
	MessageID string
	Fields    []DataField
	Origin    []string
}

// Get returns the first field with the given name.
func (r *DataRecord) Get(name string) (FieldValue, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return FieldValue{}, false
}

// GetValue implements expr.Context over a DataRecord, so rule predicates and
// OML conditions can evaluate directly against parsed fields.
func (r *DataRecord) GetValue(name string) (expr.Value, bool) {
	v, ok := r.Get(name)
	if !ok {
		return nil, false
	}
	return v, true
}

// Residue is the unconsumed tail of an input record after rule application.
type Residue string
