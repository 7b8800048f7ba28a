package entities

import "encoding/json"

// Attributes is a free-form string keyed map used for location state,
// world state, item properties, event payloads and additional stats.
// Values are JSON scalars, arrays or nested maps.
type Attributes map[string]interface{}

// UnmarshalJSON decodes leniently: null, absent or malformed payloads
// become an empty map instead of an error.
func (a *Attributes) UnmarshalJSON(data []byte) error {
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil || m == nil {
		*a = Attributes{}
		return nil
	}
	*a = m
	return nil
}

// ParseAttributes decodes a raw payload, returning an empty map on failure
func ParseAttributes(data []byte) Attributes {
	var a Attributes
	_ = a.UnmarshalJSON(data)
	return a
}

// Get returns the value for key and whether it was present
func (a Attributes) Get(key string) (interface{}, bool) {
	if a == nil {
		return nil, false
	}
	v, ok := a[key]
	return v, ok
}

// Bool reports whether key holds boolean true
func (a Attributes) Bool(key string) bool {
	v, ok := a.Get(key)
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

// Int returns the integer value for key. JSON numbers decode as float64,
// so both float64 and native integer types are accepted.
func (a Attributes) Int(key string) (int, bool) {
	v, ok := a.Get(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

// Clone returns a shallow copy that is never nil
func (a Attributes) Clone() Attributes {
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}
