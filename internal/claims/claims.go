// package claims models identity-provider claim sets as a tagged union of the
// value shapes providers actually send (text, numbers, instants).
package claims

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Recognized claim keys.
const (
	Subject           = "sub"
	PreferredUsername = "preferred_username"
	GivenName         = "given_name"
	Name              = "name"
	FamilyName        = "family_name"
	Email             = "email"
	Picture           = "picture"
	UpdatedAt         = "updated_at"
)

// Kind identifies the variant held by a [Value].
type Kind int

const (
	Null Kind = iota
	String
	Number
	Time
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Number:
		return "number"
	case Time:
		return "time"
	default:
		return "null"
	}
}

// Value is a single claim value. Exactly one of its payloads is meaningful,
// selected by Kind.
type Value struct {
	kind Kind
	str  string
	num  int64
	at   time.Time
}

// StringValue returns a text claim.
func StringValue(s string) Value { return Value{kind: String, str: s} }

// NumberValue returns a numeric claim.
func NumberValue(n int64) Value { return Value{kind: Number, num: n} }

// TimeValue returns an instant claim.
func TimeValue(t time.Time) Value { return Value{kind: Time, at: t} }

// Of converts a decoded JSON or Go value into a [Value].
//
// Fractional numbers are truncated toward zero. Types without a dedicated
// variant become their fmt.Sprint text.
func Of(v any) Value {
	switch x := v.(type) {
	case nil:
		return Value{}
	case Value:
		return x
	case string:
		return StringValue(x)
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return NumberValue(n)
		}
		if f, err := x.Float64(); err == nil {
			return NumberValue(truncate(f))
		}
		return StringValue(x.String())
	case int:
		return NumberValue(int64(x))
	case int8:
		return NumberValue(int64(x))
	case int16:
		return NumberValue(int64(x))
	case int32:
		return NumberValue(int64(x))
	case int64:
		return NumberValue(x)
	case uint:
		return NumberValue(clampUint(uint64(x)))
	case uint8:
		return NumberValue(int64(x))
	case uint16:
		return NumberValue(int64(x))
	case uint32:
		return NumberValue(int64(x))
	case uint64:
		return NumberValue(clampUint(x))
	case float32:
		return NumberValue(truncate(float64(x)))
	case float64:
		return NumberValue(truncate(x))
	case time.Time:
		return TimeValue(x)
	case *time.Time:
		if x == nil {
			return Value{}
		}
		return TimeValue(*x)
	default:
		return StringValue(fmt.Sprint(x))
	}
}

func truncate(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(f)
}

func clampUint(u uint64) int64 {
	if u > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(u)
}

func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value carries nothing.
func (v Value) IsNull() bool { return v.kind == Null }

// Int returns the numeric payload.
func (v Value) Int() (int64, bool) { return v.num, v.kind == Number }

// Time returns the instant payload.
func (v Value) Time() (time.Time, bool) { return v.at, v.kind == Time }

// String renders the value as text. Null renders as the empty string.
func (v Value) String() string {
	switch v.kind {
	case String:
		return v.str
	case Number:
		return strconv.FormatInt(v.num, 10)
	case Time:
		return v.at.UTC().Format(time.RFC3339Nano)
	default:
		return ""
	}
}

// MarshalJSON writes the value in its natural JSON form.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case String:
		return json.Marshal(v.str)
	case Number:
		return json.Marshal(v.num)
	case Time:
		return json.Marshal(v.at.UTC().Format(time.RFC3339Nano))
	default:
		return []byte("null"), nil
	}
}

// Claims is an identity-provider claim set keyed by claim name.
type Claims map[string]Value

// FromMap converts a decoded claim map.
func FromMap(m map[string]any) Claims {
	c := make(Claims, len(m))
	for k, v := range m {
		c[k] = Of(v)
	}
	return c
}

// Get returns the claim stored under key. Absent and null claims are both
// reported as not present.
func (c Claims) Get(key string) (Value, bool) {
	v, ok := c[key]
	if !ok || v.IsNull() {
		return Value{}, false
	}
	return v, true
}

// String returns the text form of the claim stored under key.
func (c Claims) String(key string) (string, bool) {
	v, ok := c.Get(key)
	if !ok {
		return "", false
	}
	return v.String(), true
}

// Map returns the claims as plain values for storage and display.
func (c Claims) Map() map[string]any {
	m := make(map[string]any, len(c))
	for k, v := range c {
		switch v.kind {
		case String:
			m[k] = v.str
		case Number:
			m[k] = v.num
		case Time:
			m[k] = v.at
		default:
			m[k] = nil
		}
	}
	return m
}

// UnmarshalJSON decodes a JSON object, keeping integers exact.
func (c *Claims) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*c = FromMap(raw)
	return nil
}
