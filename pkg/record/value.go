// Package record models HepatoDB rows. A field that the API left out (or sent
// as null, "", 0 or false) is kept as an explicit absent Value; the "null"
// sentinel only appears when a value is rendered for display.
package record

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Sentinel is the printable placeholder rendered for absent fields.
const Sentinel = "null"

// Value is a single field of a Record.
type Value struct {
	raw     any
	present bool
}

// Absent returns a Value that carries no data.
func Absent() Value {
	return Value{}
}

// String returns a string Value. The empty string is absent.
func String(s string) Value {
	if s == "" {
		return Value{}
	}
	return Value{raw: s, present: true}
}

// Number returns a numeric Value. Zero is absent.
func Number(n json.Number) Value {
	if n == "" {
		return Value{}
	}
	if f, err := n.Float64(); err == nil && f == 0 {
		return Value{}
	}
	return Value{raw: n, present: true}
}

// Float returns a numeric Value from a float64.
func Float(f float64) Value {
	return Number(json.Number(strconv.FormatFloat(f, 'f', -1, 64)))
}

// FromJSON converts a decoded JSON scalar into a Value. Decoders should use
// json.Decoder.UseNumber so that numbers arrive as json.Number.
//
// nil, "", numeric zero and false are absent.
func FromJSON(v any) Value {
	switch t := v.(type) {
	case nil:
		return Value{}
	case string:
		return String(t)
	case json.Number:
		return Number(t)
	case float64:
		return Float(t)
	case int:
		return Number(json.Number(strconv.Itoa(t)))
	case int64:
		return Number(json.Number(strconv.FormatInt(t, 10)))
	case bool:
		if !t {
			return Value{}
		}
		return Value{raw: t, present: true}
	default:
		return Value{raw: t, present: true}
	}
}

// Present reports whether the field carried data.
func (v Value) Present() bool {
	return v.present
}

// Raw returns the underlying scalar, or nil when absent.
func (v Value) Raw() any {
	return v.raw
}

// String renders the value for display. Absent values render as Sentinel.
func (v Value) String() string {
	if !v.present {
		return Sentinel
	}
	switch t := v.raw.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

// Float64 parses the value as a finite number. Numeric strings are accepted
// since several collections return measurements as text.
func (v Value) Float64() (float64, bool) {
	if !v.present {
		return 0, false
	}
	var (
		f   float64
		err error
	)
	switch t := v.raw.(type) {
	case json.Number:
		f, err = t.Float64()
	case string:
		f, err = strconv.ParseFloat(t, 64)
	default:
		return 0, false
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// MarshalJSON encodes absent values as JSON null and present ones unchanged.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.present {
		return []byte("null"), nil
	}
	return json.Marshal(v.raw)
}

// UnmarshalJSON decodes a JSON scalar with the same absent rules as FromJSON.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := decodeNumber(data, &raw); err != nil {
		return err
	}
	*v = FromJSON(raw)
	return nil
}
