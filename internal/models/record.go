package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// kind tags the two scalar types a record attribute may hold.
type kind int

const (
	kindString kind = iota
	kindNumeric
)

// Value is a scalar attribute value. It is either a number or a string,
// never both; the zero Value is the empty string.
type Value struct {
	kind kind
	num  float64
	str  string
	// lit is the client's decimal text for numbers built by Coerce. The store
	// receives it verbatim so digits beyond float64 precision survive.
	lit string
}

// String builds a string-tagged Value.
func String(s string) Value {
	return Value{kind: kindString, str: s}
}

// Numeric builds a number-tagged Value.
func Numeric(f float64) Value {
	return Value{kind: kindNumeric, num: f}
}

// numericLiteral builds a number that remembers its source text.
func numericLiteral(f float64, lit string) Value {
	return Value{kind: kindNumeric, num: f, lit: lit}
}

// IsNumeric reports whether v holds a number.
func (v Value) IsNumeric() bool { return v.kind == kindNumeric }

// Number returns the numeric value; zero for strings.
func (v Value) Number() float64 { return v.num }

// StringVal returns the string value; empty for numbers.
func (v Value) StringVal() string { return v.str }

// Equal compares kind and value, ignoring how a number was written.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	if v.kind == kindNumeric {
		return v.num == o.num
	}
	return v.str == o.str
}

// Text renders the value the way the store encodes it on the wire:
// strings verbatim, numbers as the client wrote them or else as plain decimals.
func (v Value) Text() string {
	if v.kind != kindNumeric {
		return v.str
	}
	if v.lit != "" {
		return v.lit
	}
	return strconv.FormatFloat(v.num, 'f', -1, 64)
}

// Empty reports whether v is a zero-length string. Numbers are never empty.
func (v Value) Empty() bool {
	return v.kind == kindString && v.str == ""
}

// MarshalJSON writes numbers as JSON numbers and strings as JSON strings.
// A source literal that is already valid JSON is written unchanged.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind != kindNumeric {
		return json.Marshal(v.str)
	}
	if v.lit != "" && json.Valid([]byte(v.lit)) {
		return []byte(v.lit), nil
	}
	return json.Marshal(v.num)
}

// UnmarshalJSON accepts a JSON string or number.
func (v *Value) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	out, err := FromJSON(raw)
	if err != nil {
		return err
	}
	*v = out
	return nil
}

// ErrUnsupportedType is returned when a stored attribute is not a string or number.
var ErrUnsupportedType = errors.New("unsupported attribute type")

// FromJSON converts a decoded JSON scalar (decoded with UseNumber or not) into a Value.
func FromJSON(raw any) (Value, error) {
	switch t := raw.(type) {
	case string:
		return String(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("number %q: %w", t.String(), err)
		}
		return Numeric(f), nil
	case float64:
		return Numeric(t), nil
	default:
		return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedType, raw)
	}
}

// Record is one stored entity: attribute name to scalar value.
type Record map[string]Value

// Get returns the named attribute and whether it is present.
func (r Record) Get(attribute string) (Value, bool) {
	v, ok := r[attribute]
	return v, ok
}

// DecodeRecord parses a flat JSON object into a Record. Attributes a Value
// cannot hold (objects, arrays, booleans, null, numbers beyond float64) are
// left out so one odd field never hides the rest of the record.
func DecodeRecord(b []byte) (Record, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	rec := make(Record, len(raw))
	for name, field := range raw {
		v, err := FromJSON(field)
		if err != nil {
			continue
		}
		rec[name] = v
	}
	return rec, nil
}
