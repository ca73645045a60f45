package value

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ToJSON renders v in the engine's wire format: objects keep insertion
// order (Go's encoding/json does not do this for map[string]any, which
// is exactly why Object tracks key order itself).
func ToJSON(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v Value) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		if v.b {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case KindNumber:
		b, err := json.Marshal(v.n)
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindString:
		b, err := json.Marshal(v.s)
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindArray:
		buf.WriteByte('[')
		for i, item := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		if v.obj != nil {
			for i, k := range v.obj.Keys() {
				if i > 0 {
					buf.WriteByte(',')
				}
				kb, err := json.Marshal(k)
				if err != nil {
					return err
				}
				buf.Write(kb)
				buf.WriteByte(':')
				val, _ := v.obj.Get(k)
				if err := writeJSON(buf, val); err != nil {
					return err
				}
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("value: unknown kind %v", v.kind)
	}
	return nil
}

// FromJSON parses a single JSON value, preserving object key order.
func FromJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeJSONValue(dec)
	if err != nil {
		return Null, err
	}
	return v, nil
}

func decodeJSONValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Null, err
	}
	return decodeJSONToken(dec, tok)
}

func decodeJSONToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Null, nil
	case bool:
		return Bool(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Null, err
		}
		return Number(f), nil
	case string:
		return String(t), nil
	case json.Delim:
		switch t {
		case '[':
			var items []Value
			for dec.More() {
				v, err := decodeJSONValue(dec)
				if err != nil {
					return Null, err
				}
				items = append(items, v)
			}
			if _, err := dec.Token(); err != nil {
				return Null, err
			}
			return Array(items), nil
		case '{':
			obj := NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Null, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Null, fmt.Errorf("value: object key is not a string: %v", keyTok)
				}
				v, err := decodeJSONValue(dec)
				if err != nil {
					return Null, err
				}
				obj.Set(key, v)
			}
			if _, err := dec.Token(); err != nil {
				return Null, err
			}
			return FromObject(obj), nil
		}
	}
	return Null, fmt.Errorf("value: unexpected JSON token %v", tok)
}
