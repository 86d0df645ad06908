package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/tgadmin/pkg/domain"
	"github.com/tailscale/hujson"
)

func parseJSON(data []byte) (domain.Value, error) {
	// Standardize rewrites its input in place.
	std, err := hujson.Standardize(append([]byte(nil), data...))
	if err != nil {
		return nil, fmt.Errorf("%w: json: %v", domain.ErrParse, err)
	}

	dec := json.NewDecoder(bytes.NewReader(std))
	dec.UseNumber()
	v, err := decodeJSON(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: json: %v", domain.ErrParse, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: json: trailing data after value", domain.ErrParse)
	}
	return v, nil
}

// decodeJSON walks tokens instead of unmarshalling into map[string]any so
// that object key order survives.
func decodeJSON(dec *json.Decoder) (domain.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case nil:
		return domain.Null{}, nil
	case bool:
		return domain.Bool(t), nil
	case json.Number:
		return domain.Number(t), nil
	case string:
		return domain.String(t), nil
	case json.Delim:
		switch t {
		case '{':
			obj := domain.NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key is %T", keyTok)
				}
				v, err := decodeJSON(dec)
				if err != nil {
					return nil, err
				}
				obj.Set(key, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			arr := domain.NewArray()
			for dec.More() {
				v, err := decodeJSON(dec)
				if err != nil {
					return nil, err
				}
				arr.Items = append(arr.Items, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		}
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}
