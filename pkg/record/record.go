package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Record is one row returned by a collection endpoint. Field order follows the
// schema it was normalized against.
type Record struct {
	fields []string
	values map[string]Value
}

// New builds a Record from explicit field/value pairs, in order.
func New(fields []string, values []Value) Record {
	r := Record{
		fields: make([]string, 0, len(fields)),
		values: make(map[string]Value, len(fields)),
	}
	for i, f := range fields {
		v := Absent()
		if i < len(values) {
			v = values[i]
		}
		r.set(f, v)
	}
	return r
}

// Normalize maps a decoded API item onto the given field list. Every listed
// field is present in the result, absent fields included. With no field list
// the item's own keys are used in sorted order.
func Normalize(fields []string, item map[string]any) Record {
	if len(fields) == 0 {
		fields = make([]string, 0, len(item))
		for k := range item {
			fields = append(fields, k)
		}
		sort.Strings(fields)
	}

	r := Record{
		fields: make([]string, 0, len(fields)),
		values: make(map[string]Value, len(fields)),
	}
	for _, f := range fields {
		r.set(f, FromJSON(item[f]))
	}
	return r
}

func (r *Record) set(field string, v Value) {
	if _, ok := r.values[field]; !ok {
		r.fields = append(r.fields, field)
	}
	r.values[field] = v
}

// Fields returns the field names in schema order.
func (r Record) Fields() []string {
	out := make([]string, len(r.fields))
	copy(out, r.fields)
	return out
}

// Get returns the value of a field. Unknown fields are absent.
func (r Record) Get(field string) Value {
	return r.values[field]
}

// Len returns the number of fields.
func (r Record) Len() int {
	return len(r.fields)
}

// Display renders every field as printable text, substituting Sentinel for
// absent values.
func (r Record) Display() map[string]string {
	out := make(map[string]string, len(r.fields))
	for _, f := range r.fields {
		out[f] = r.values[f].String()
	}
	return out
}

// MarshalJSON writes the fields in schema order; absent fields become null.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f)
		if err != nil {
			return nil, err
		}
		val, err := r.values[f].MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Render converts a slice of records into display rows.
func Render(records []Record) []map[string]string {
	rows := make([]map[string]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, r.Display())
	}
	return rows
}
