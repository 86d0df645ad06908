package codec

import (
	"bytes"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/aretw0/tgadmin/pkg/domain"
)

// keySep joins key paths for the order index. TOML keys cannot hold NUL.
const keySep = "\x00"

var bareKey = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func parseTOML(data []byte) (domain.Value, error) {
	var raw map[string]any
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, fmt.Errorf("%w: toml: %v", domain.ErrParse, err)
	}

	// md.Keys lists every key in document order; use it to restore the
	// order the map lost.
	order := make(map[string]int)
	for i, k := range md.Keys() {
		joined := strings.Join(k, keySep)
		if _, seen := order[joined]; !seen {
			order[joined] = i
		}
	}

	v, err := fromTOML(raw, nil, order)
	if err != nil {
		return nil, fmt.Errorf("%w: toml: %v", domain.ErrParse, err)
	}
	return v, nil
}

func fromTOML(raw any, path []string, order map[string]int) (domain.Value, error) {
	switch t := raw.(type) {
	case map[string]any:
		return tomlTable(t, path, order)
	case []map[string]any:
		arr := domain.NewArray()
		for _, item := range t {
			v, err := tomlTable(item, path, order)
			if err != nil {
				return nil, err
			}
			arr.Items = append(arr.Items, v)
		}
		return arr, nil
	case []any:
		arr := domain.NewArray()
		for _, item := range t {
			v, err := fromTOML(item, path, order)
			if err != nil {
				return nil, err
			}
			arr.Items = append(arr.Items, v)
		}
		return arr, nil
	case string:
		return domain.String(t), nil
	case bool:
		return domain.Bool(t), nil
	case int64:
		return domain.Int(t), nil
	case float64:
		return domain.Float(t), nil
	case time.Time:
		return domain.String(t.Format(time.RFC3339Nano)), nil
	}
	return nil, fmt.Errorf("unsupported value %T at %s", raw, strings.Join(path, "."))
}

func tomlTable(table map[string]any, path []string, order map[string]int) (*domain.Object, error) {
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	prefix := strings.Join(path, keySep)
	if len(path) > 0 {
		prefix += keySep
	}
	rank := func(k string) (int, bool) {
		i, ok := order[prefix+k]
		return i, ok
	}
	sort.SliceStable(keys, func(i, j int) bool {
		ri, oki := rank(keys[i])
		rj, okj := rank(keys[j])
		switch {
		case oki && okj:
			return ri < rj
		case oki != okj:
			return oki
		}
		return keys[i] < keys[j]
	})

	obj := domain.NewObject()
	for _, k := range keys {
		childPath := append(append([]string(nil), path...), k)
		v, err := fromTOML(table[k], childPath, order)
		if err != nil {
			return nil, err
		}
		obj.Set(k, v)
	}
	return obj, nil
}

func serializeTOML(v domain.Value) ([]byte, error) {
	root, ok := v.(*domain.Object)
	if !ok {
		return nil, fmt.Errorf("%w: toml: document root must be a table, got %s", domain.ErrSerialize, v.Kind())
	}
	var buf bytes.Buffer
	if err := emitTable(&buf, nil, root); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// emitTable writes plain keys first, then sub-tables, then arrays of tables,
// so every key lands under the header it belongs to.
func emitTable(buf *bytes.Buffer, path []string, obj *domain.Object) error {
	var tables, tableArrays []string
	for _, k := range obj.Keys() {
		field, _ := obj.Get(k)
		switch {
		case isTable(field):
			tables = append(tables, k)
		case isTableArray(field):
			tableArrays = append(tableArrays, k)
		default:
			inline, err := tomlInline(field, append(path, k))
			if err != nil {
				return err
			}
			fmt.Fprintf(buf, "%s = %s\n", tomlKey(k), inline)
		}
	}

	for _, k := range tables {
		field, _ := obj.Get(k)
		childPath := append(append([]string(nil), path...), k)
		writeHeader(buf, "[", childPath, "]")
		if err := emitTable(buf, childPath, field.(*domain.Object)); err != nil {
			return err
		}
	}
	for _, k := range tableArrays {
		field, _ := obj.Get(k)
		childPath := append(append([]string(nil), path...), k)
		for _, item := range field.(*domain.Array).Items {
			writeHeader(buf, "[[", childPath, "]]")
			if err := emitTable(buf, childPath, item.(*domain.Object)); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeHeader(buf *bytes.Buffer, open string, path []string, closing string) {
	if buf.Len() > 0 {
		buf.WriteByte('\n')
	}
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = tomlKey(p)
	}
	fmt.Fprintf(buf, "%s%s%s\n", open, strings.Join(parts, "."), closing)
}

func isTable(v domain.Value) bool {
	_, ok := v.(*domain.Object)
	return ok
}

func isTableArray(v domain.Value) bool {
	arr, ok := v.(*domain.Array)
	if !ok || len(arr.Items) == 0 {
		return false
	}
	for _, item := range arr.Items {
		if !isTable(item) {
			return false
		}
	}
	return true
}

// tomlInline renders a value for the right-hand side of `key = value` by
// letting the toml encoder format a single-key table and keeping the value.
func tomlInline(v domain.Value, path []string) (string, error) {
	native, err := toNative(v, path)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(map[string]any{"v": native}); err != nil {
		return "", fmt.Errorf("%w: toml: %s: %v", domain.ErrSerialize, strings.Join(path, "."), err)
	}
	line := strings.TrimSuffix(buf.String(), "\n")
	inline, ok := strings.CutPrefix(line, "v = ")
	if !ok || strings.Contains(inline, "\n") {
		return "", fmt.Errorf("%w: toml: %s has no inline form", domain.ErrSerialize, strings.Join(path, "."))
	}
	return inline, nil
}

func toNative(v domain.Value, path []string) (any, error) {
	switch t := v.(type) {
	case nil, domain.Null:
		return nil, fmt.Errorf("%w: toml: %s is null, which toml cannot hold", domain.ErrSerialize, strings.Join(path, "."))
	case domain.Bool:
		return bool(t), nil
	case domain.String:
		return string(t), nil
	case domain.Number:
		if i, err := strconv.ParseInt(string(t), 10, 64); err == nil {
			return i, nil
		}
		f, err := t.Float64()
		if err != nil && !math.IsInf(f, 0) {
			return nil, fmt.Errorf("%w: toml: %s: number %q", domain.ErrSerialize, strings.Join(path, "."), string(t))
		}
		return f, nil
	case *domain.Array:
		out := make([]any, len(t.Items))
		for i, item := range t.Items {
			n, err := toNative(item, path)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case *domain.Object:
		out := make(map[string]any, t.Len())
		for _, k := range t.Keys() {
			field, _ := t.Get(k)
			n, err := toNative(field, append(path, k))
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: toml: unknown value %T", domain.ErrSerialize, v)
}

func tomlKey(k string) string {
	if bareKey.MatchString(k) {
		return k
	}
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range k {
		switch {
		case r == '"':
			b.WriteString(`\"`)
		case r == '\\':
			b.WriteString(`\\`)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&b, `\u%04X`, r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func canonicalizeTOML(v domain.Value) {
	switch t := v.(type) {
	case *domain.Array:
		for _, item := range t.Items {
			canonicalizeTOML(item)
		}
	case *domain.Object:
		var plain, tables, tableArrays []string
		for _, k := range t.Keys() {
			field, _ := t.Get(k)
			canonicalizeTOML(field)
			switch {
			case isTable(field):
				tables = append(tables, k)
			case isTableArray(field):
				tableArrays = append(tableArrays, k)
			default:
				plain = append(plain, k)
			}
		}
		t.Reorder(append(append(plain, tables...), tableArrays...))
	}
}
