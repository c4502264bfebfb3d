// Package secret wraps credential values so they cannot leak through
// default printing or serialization. The raw value is only reachable
// through an explicit Reveal call at the point of use.
package secret

// Mask is what a secret renders as anywhere except Reveal.
const Mask = "[REDACTED]"

// String holds a sensitive string value.
type String struct {
	value string
}

// New wraps a raw credential.
func New(value string) String {
	return String{value: value}
}

// Reveal returns the underlying value. Call sites should pass the result
// directly into the header/connection that needs it rather than storing it.
func (s String) Reveal() string {
	return s.value
}

// IsZero reports whether the secret was never set.
func (s String) IsZero() bool {
	return s.value == ""
}

func (s String) String() string   { return Mask }
func (s String) GoString() string { return Mask }

// MarshalJSON always emits the mask, never the value.
func (s String) MarshalJSON() ([]byte, error) {
	return []byte(`"` + Mask + `"`), nil
}

// UnmarshalJSON accepts a plain JSON string.
func (s *String) UnmarshalJSON(data []byte) error {
	return s.unmarshalString(data)
}

// UnmarshalYAML lets secrets be read from config files as plain strings.
func (s *String) UnmarshalYAML(unmarshal func(any) error) error {
	var v string
	if err := unmarshal(&v); err != nil {
		return err
	}
	s.value = v
	return nil
}

func (s *String) unmarshalString(data []byte) error {
	v := string(data)
	if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
		v = v[1 : len(v)-1]
	}
	s.value = v
	return nil
}
