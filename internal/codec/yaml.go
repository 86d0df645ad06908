package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/aretw0/tgadmin/pkg/domain"
	"gopkg.in/yaml.v3"
)

// maxYAMLNodes bounds the values an aliased document may expand into.
const maxYAMLNodes = 1 << 20

func parseYAML(data []byte) (domain.Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: yaml: %v", domain.ErrParse, err)
	}
	if doc.Kind == 0 {
		return domain.Null{}, nil
	}
	d := &yamlDecoder{expanding: make(map[*yaml.Node]bool)}
	v, err := d.decode(&doc)
	if err != nil {
		return nil, fmt.Errorf("%w: yaml: %v", domain.ErrParse, err)
	}
	return v, nil
}

// yamlDecoder converts a node graph into a value tree. Aliases are expanded
// in place; an alias to a container still being decoded is a cycle.
type yamlDecoder struct {
	expanding map[*yaml.Node]bool
	nodes     int
}

func (d *yamlDecoder) decode(n *yaml.Node) (domain.Value, error) {
	d.nodes++
	if d.nodes > maxYAMLNodes {
		return nil, fmt.Errorf("document expands to more than %d values", maxYAMLNodes)
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return domain.Null{}, nil
		}
		return d.decode(n.Content[0])
	case yaml.AliasNode:
		target := n.Alias
		if target == nil {
			return nil, fmt.Errorf("line %d: unknown alias %q", n.Line, n.Value)
		}
		if d.expanding[target] {
			return nil, fmt.Errorf("line %d: recursive alias %q", n.Line, n.Value)
		}
		return d.decode(target)
	case yaml.SequenceNode:
		if n.Anchor != "" {
			d.expanding[n] = true
			defer delete(d.expanding, n)
		}
		arr := domain.NewArray()
		for _, item := range n.Content {
			v, err := d.decode(item)
			if err != nil {
				return nil, err
			}
			arr.Items = append(arr.Items, v)
		}
		return arr, nil
	case yaml.MappingNode:
		if n.Anchor != "" {
			d.expanding[n] = true
			defer delete(d.expanding, n)
		}
		obj := domain.NewObject()
		var merges []*domain.Object
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode, valNode := n.Content[i], n.Content[i+1]
			if keyNode.Kind == yaml.AliasNode && keyNode.Alias != nil {
				keyNode = keyNode.Alias
			}
			if keyNode.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping keys must be scalars", keyNode.Line)
			}
			v, err := d.decode(valNode)
			if err != nil {
				return nil, err
			}
			if keyNode.ShortTag() == "!!merge" {
				merged, err := mergeSources(v, keyNode.Line)
				if err != nil {
					return nil, err
				}
				merges = append(merges, merged...)
				continue
			}
			obj.Set(keyNode.Value, v)
		}
		for _, src := range merges {
			for _, k := range src.Keys() {
				if _, exists := obj.Get(k); !exists {
					v, _ := src.Get(k)
					obj.Set(k, v)
				}
			}
		}
		return obj, nil
	case yaml.ScalarNode:
		return yamlScalar(n)
	}
	return nil, fmt.Errorf("line %d: unsupported node kind %d", n.Line, n.Kind)
}

func mergeSources(v domain.Value, line int) ([]*domain.Object, error) {
	switch t := v.(type) {
	case *domain.Object:
		return []*domain.Object{t}, nil
	case *domain.Array:
		out := make([]*domain.Object, 0, len(t.Items))
		for _, item := range t.Items {
			obj, ok := item.(*domain.Object)
			if !ok {
				return nil, fmt.Errorf("line %d: merge list must hold mappings", line)
			}
			out = append(out, obj)
		}
		return out, nil
	}
	return nil, fmt.Errorf("line %d: merge value must be a mapping", line)
}

func yamlScalar(n *yaml.Node) (domain.Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return domain.Null{}, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return domain.Bool(b), nil
	case "!!int":
		if isJSONNumber(n.Value) {
			return domain.Number(n.Value), nil
		}
		// 0x1F, 0o17, 1_000 and friends.
		i, ok := new(big.Int).SetString(strings.ReplaceAll(n.Value, "_", ""), 0)
		if !ok {
			return nil, fmt.Errorf("line %d: invalid integer %q", n.Line, n.Value)
		}
		return domain.Number(i.String()), nil
	case "!!float":
		if isJSONNumber(n.Value) {
			return domain.Number(n.Value), nil
		}
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		return domain.Float(f), nil
	}
	// !!str, !!timestamp, !!binary and custom tags keep their text.
	return domain.String(n.Value), nil
}

func isJSONNumber(s string) bool {
	if s == "" || (s[0] != '-' && (s[0] < '0' || s[0] > '9')) {
		return false
	}
	return json.Valid([]byte(s))
}

func serializeYAML(v domain.Value) ([]byte, error) {
	node, err := toYAML(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return nil, fmt.Errorf("%w: yaml: %v", domain.ErrSerialize, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("%w: yaml: %v", domain.ErrSerialize, err)
	}
	return buf.Bytes(), nil
}

func toYAML(v domain.Value) (*yaml.Node, error) {
	switch t := v.(type) {
	case nil, domain.Null:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case domain.Bool:
		val := "false"
		if t {
			val = "true"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: val}, nil
	case domain.Number:
		return yamlNumber(t), nil
	case domain.String:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: string(t)}, nil
	case *domain.Array:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range t.Items {
			child, err := toYAML(item)
			if err != nil {
				return nil, err
			}
			seq.Content = append(seq.Content, child)
		}
		return seq, nil
	case *domain.Object:
		m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range t.Keys() {
			field, _ := t.Get(k)
			child, err := toYAML(field)
			if err != nil {
				return nil, err
			}
			m.Content = append(m.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				child,
			)
		}
		return m, nil
	}
	return nil, fmt.Errorf("%w: yaml: unknown value %T", domain.ErrSerialize, v)
}

func yamlNumber(n domain.Number) *yaml.Node {
	switch strings.ToLower(string(n)) {
	case "+inf", "inf":
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: ".inf"}
	case "-inf":
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: "-.inf"}
	case "nan":
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: ".nan"}
	}
	if n.IsInteger() {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: string(n)}
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: string(n)}
}
