package codec

import (
	"bytes"
	"fmt"
	"math/big"
	"strings"

	"github.com/aretw0/tgadmin/pkg/domain"
	"github.com/titanous/json5"
)

func parseJSON5(data []byte) (domain.Value, error) {
	// Unmarshal checks the whole input, trailing data included.
	var raw json5.RawMessage
	if err := json5.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: json5: %v", domain.ErrParse, err)
	}

	dec := json5.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: json5: %v", domain.ErrParse, err)
	}

	// The decoder hands objects back as maps; the shape carries the key
	// order it dropped.
	sc := &json5Scanner{data: data}
	shape, err := sc.value()
	if err != nil {
		return nil, fmt.Errorf("%w: json5: %v", domain.ErrParse, err)
	}
	out, err := fromJSON5(v, shape)
	if err != nil {
		return nil, fmt.Errorf("%w: json5: %v", domain.ErrParse, err)
	}
	return out, nil
}

// json5Shape mirrors the containers of a JSON5 document.
type json5Shape struct {
	keys     []string
	children []*json5Shape
}

func (s *json5Shape) child(i int) *json5Shape {
	if s == nil || i >= len(s.children) {
		return nil
	}
	return s.children[i]
}

func fromJSON5(v any, shape *json5Shape) (domain.Value, error) {
	switch t := v.(type) {
	case nil:
		return domain.Null{}, nil
	case bool:
		return domain.Bool(t), nil
	case string:
		return domain.String(t), nil
	case json5.Number:
		n, err := json5Number(string(t))
		if err != nil {
			return nil, err
		}
		return n, nil
	case float64:
		// Only Infinity and NaN arrive as floats once UseNumber is set.
		return nil, fmt.Errorf("%v cannot be stored: the document is written back as JSON", t)
	case []any:
		arr := domain.NewArray()
		for i, item := range t {
			child, err := fromJSON5(item, shape.child(i))
			if err != nil {
				return nil, err
			}
			arr.Items = append(arr.Items, child)
		}
		return arr, nil
	case map[string]any:
		if shape == nil {
			return nil, fmt.Errorf("object without key order")
		}
		// A repeated key keeps its first position and its last value.
		last := make(map[string]int, len(shape.keys))
		for i, k := range shape.keys {
			last[k] = i
		}
		if len(last) != len(t) {
			return nil, fmt.Errorf("object has %d keys, scanned %d", len(t), len(last))
		}
		obj := domain.NewObject()
		for _, k := range shape.keys {
			if _, done := obj.Get(k); done {
				continue
			}
			item, ok := t[k]
			if !ok {
				return nil, fmt.Errorf("scanned key %q is missing", k)
			}
			child, err := fromJSON5(item, shape.child(last[k]))
			if err != nil {
				return nil, err
			}
			obj.Set(k, child)
		}
		return obj, nil
	}
	return nil, fmt.Errorf("unexpected value %T", v)
}

// json5Number rewrites the number forms JSON lacks: hex, a leading plus
// and a bare leading or trailing decimal point.
func json5Number(s string) (domain.Number, error) {
	if isJSONNumber(s) {
		return domain.Number(s), nil
	}
	sign, digits := "", s
	switch {
	case strings.HasPrefix(digits, "-"):
		sign, digits = "-", digits[1:]
	case strings.HasPrefix(digits, "+"):
		digits = digits[1:]
	}
	if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		i, ok := new(big.Int).SetString(digits[2:], 16)
		if !ok {
			return "", fmt.Errorf("invalid hex number %q", s)
		}
		if sign == "-" {
			i.Neg(i)
		}
		return domain.Number(i.String()), nil
	}
	if strings.HasPrefix(digits, ".") {
		digits = "0" + digits
	}
	if i := strings.IndexByte(digits, '.'); i >= 0 && (i == len(digits)-1 || digits[i+1] == 'e' || digits[i+1] == 'E') {
		digits = digits[:i] + digits[i+1:]
	}
	if n := sign + digits; isJSONNumber(n) {
		return domain.Number(n), nil
	}
	return "", fmt.Errorf("invalid number %q", s)
}

// json5Scanner records object keys in source order. It runs after the
// decoder accepted the input, so it only tracks structure.
type json5Scanner struct {
	data []byte
	off  int
}

func (s *json5Scanner) value() (*json5Shape, error) {
	s.skip()
	if s.off >= len(s.data) {
		return nil, fmt.Errorf("unexpected end of input")
	}
	switch s.data[s.off] {
	case '{':
		s.off++
		shape := &json5Shape{}
		for {
			s.skip()
			if s.peek() == '}' {
				s.off++
				return shape, nil
			}
			key, err := s.key()
			if err != nil {
				return nil, err
			}
			s.skip()
			if s.peek() != ':' {
				return nil, fmt.Errorf("offset %d: expected ':' after key %q", s.off, key)
			}
			s.off++
			child, err := s.value()
			if err != nil {
				return nil, err
			}
			shape.keys = append(shape.keys, key)
			shape.children = append(shape.children, child)
			if err := s.separator('}'); err != nil {
				return nil, err
			}
		}
	case '[':
		s.off++
		shape := &json5Shape{}
		for {
			s.skip()
			if s.peek() == ']' {
				s.off++
				return shape, nil
			}
			child, err := s.value()
			if err != nil {
				return nil, err
			}
			shape.children = append(shape.children, child)
			if err := s.separator(']'); err != nil {
				return nil, err
			}
		}
	case '"', '\'':
		s.skipString()
		return nil, nil
	}
	for s.off < len(s.data) && !strings.ContainsRune(",]}/ \t\r\n\f", rune(s.data[s.off])) {
		s.off++
	}
	return nil, nil
}

// separator consumes the ',' after a member, or stops before the closing
// bracket.
func (s *json5Scanner) separator(closing byte) error {
	s.skip()
	switch s.peek() {
	case ',':
		s.off++
		return nil
	case closing:
		return nil
	}
	return fmt.Errorf("offset %d: expected ',' or %q", s.off, closing)
}

func (s *json5Scanner) key() (string, error) {
	start := s.off
	if c := s.peek(); c == '"' || c == '\'' {
		s.skipString()
		var key string
		if err := json5.Unmarshal(s.data[start:s.off], &key); err != nil {
			return "", err
		}
		return key, nil
	}
	for s.off < len(s.data) && !strings.ContainsRune(": \t\r\n\f/", rune(s.data[s.off])) {
		s.off++
	}
	if s.off == start {
		return "", fmt.Errorf("offset %d: expected a key", s.off)
	}
	return string(s.data[start:s.off]), nil
}

func (s *json5Scanner) skipString() {
	quote := s.data[s.off]
	s.off++
	for s.off < len(s.data) {
		switch s.data[s.off] {
		case '\\':
			s.off += 2
			continue
		case quote:
			s.off++
			return
		}
		s.off++
	}
}

// skip steps over whitespace and comments.
func (s *json5Scanner) skip() {
	for s.off < len(s.data) {
		switch c := s.data[s.off]; {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f':
			s.off++
		case bytes.HasPrefix(s.data[s.off:], []byte("//")):
			end := bytes.IndexByte(s.data[s.off:], '\n')
			if end < 0 {
				s.off = len(s.data)
				return
			}
			s.off += end + 1
		case bytes.HasPrefix(s.data[s.off:], []byte("/*")):
			end := bytes.Index(s.data[s.off+2:], []byte("*/"))
			if end < 0 {
				s.off = len(s.data)
				return
			}
			s.off += end + 4
		default:
			return
		}
	}
}

func (s *json5Scanner) peek() byte {
	if s.off >= len(s.data) {
		return 0
	}
	return s.data[s.off]
}
