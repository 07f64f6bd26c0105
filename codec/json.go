package codec

import "encoding/json"

// JSON encodes messages as JSON text. Any JSON-marshalable value may
// be sent; decoded messages use the generic forms produced by
// encoding/json (nil, bool, float64, string, []any, map[string]any).
// A nil value encodes to the JSON literal null.
type JSON struct{}

// Encode implements part of the Codec interface.
func (JSON) Encode(v any) ([]byte, error) { return json.Marshal(v) }

// Decode implements part of the Codec interface. An empty buffer
// decodes to nil.
func (JSON) Decode(data []byte) (any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}
