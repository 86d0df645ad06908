package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MarshalJSON renders v as compact JSON, keeping object key order and leaving
// HTML characters unescaped.
func MarshalJSON(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := appendJSON(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Literal renders v the way an operator would type it back.
// Values that have no JSON spelling fall back to their raw text.
func Literal(v Value) string {
	out, err := MarshalJSON(v)
	if err != nil {
		if n, ok := v.(Number); ok {
			return string(n)
		}
		return fmt.Sprintf("<%s>", v.Kind())
	}
	return string(out)
}

func (Null) MarshalJSON() ([]byte, error)      { return []byte("null"), nil }
func (b Bool) MarshalJSON() ([]byte, error)    { return MarshalJSON(b) }
func (n Number) MarshalJSON() ([]byte, error)  { return MarshalJSON(n) }
func (s String) MarshalJSON() ([]byte, error)  { return MarshalJSON(s) }
func (a *Array) MarshalJSON() ([]byte, error)  { return MarshalJSON(a) }
func (o *Object) MarshalJSON() ([]byte, error) { return MarshalJSON(o) }

func appendJSON(buf *bytes.Buffer, v Value) error {
	switch t := v.(type) {
	case nil, Null:
		buf.WriteString("null")
	case Bool:
		if t {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case Number:
		out, err := json.Marshal(json.Number(t))
		if err != nil {
			return fmt.Errorf("%w: number %q has no JSON form", ErrSerialize, string(t))
		}
		buf.Write(out)
	case String:
		return appendJSONString(buf, string(t))
	case *Array:
		buf.WriteByte('[')
		for i, item := range t.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := appendJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case *Object:
		buf.WriteByte('{')
		for i, k := range t.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := appendJSONString(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := appendJSON(buf, t.fields[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("%w: unknown value %T", ErrSerialize, v)
	}
	return nil
}

func appendJSONString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("%w: %v", ErrSerialize, err)
	}
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte("\n")))
	return nil
}
