package domain

import (
	"encoding/json"
	"strconv"
	"time"
)

// Kind identifies the type held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindTime
)

// Value is a single typed cell. The zero Value is null.
type Value struct {
	kind Kind
	str  string
	num  float64
	at   time.Time
}

// NewString returns a string value.
func NewString(s string) Value { return Value{kind: KindString, str: s} }

// NewNumber returns a numeric value.
func NewNumber(n float64) Value { return Value{kind: KindNumber, num: n} }

// NewTime returns a timestamp value.
func NewTime(t time.Time) Value { return Value{kind: KindTime, at: t} }

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

// Float returns the numeric content. ok is false for anything but numbers.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// Key is the text used for grouping and set membership. Numbers use the
// shortest representation, so 3 and 3.0 share the key "3". Null has key "".
func (v Value) Key() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindTime:
		return v.at.Format(time.RFC3339)
	default:
		return ""
	}
}

func (v Value) String() string { return v.Key() }

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	case KindTime:
		return json.Marshal(v.at)
	default:
		return []byte("null"), nil
	}
}
