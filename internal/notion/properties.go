package notion

import (
	"encoding/json"
	"fmt"

	"github.com/buger/jsonparser"
)

// PropertyValue is a single property of a page.
//
// The "type" field names which sibling field holds the payload, e.g.
// {"type": "number", "number": 42}. The whole object is kept as raw JSON so that
// property types added to the API later decode without loss.
type PropertyValue struct {
	ID   string
	Type string
	raw  []byte
}

// NewPropertyValue builds a property value of the given type from payload fields.
func NewPropertyValue(typ string, payload map[string]interface{}) (PropertyValue, error) {
	obj := make(map[string]interface{}, len(payload)+1)
	for k, v := range payload {
		obj[k] = v
	}
	obj["type"] = typ
	data, err := json.Marshal(obj)
	if err != nil {
		return PropertyValue{}, fmt.Errorf("failed to encode %s property: %w", typ, err)
	}
	return ParsePropertyValue(data)
}

// ParsePropertyValue decodes a property object from JSON.
func ParsePropertyValue(data []byte) (PropertyValue, error) {
	var v PropertyValue
	if err := json.Unmarshal(data, &v); err != nil {
		return PropertyValue{}, err
	}
	return v, nil
}

// UnmarshalJSON keeps the raw object and lifts out the id and type fields.
// Values that are not objects, or objects without a string "type", decode to a
// PropertyValue with an empty Type.
func (v *PropertyValue) UnmarshalJSON(data []byte) error {
	v.raw = append([]byte(nil), data...)
	v.ID, v.Type = "", ""
	if typ, err := jsonparser.GetString(data, "type"); err == nil {
		v.Type = typ
	}
	if id, err := jsonparser.GetString(data, "id"); err == nil {
		v.ID = id
	}
	return nil
}

// MarshalJSON returns the property exactly as it was decoded.
func (v PropertyValue) MarshalJSON() ([]byte, error) {
	if len(v.raw) == 0 {
		return []byte("null"), nil
	}
	return v.raw, nil
}

// Raw returns the undecoded property object.
func (v PropertyValue) Raw() []byte {
	return v.raw
}

// Lookup returns the JSON found at path inside the property object along with
// its kind. Array elements are addressed as "[i]". Missing paths report
// jsonparser.NotExist.
func (v PropertyValue) Lookup(path ...string) ([]byte, jsonparser.ValueType) {
	if len(v.raw) == 0 {
		return nil, jsonparser.NotExist
	}
	value, kind, _, err := jsonparser.Get(v.raw, path...)
	if err != nil {
		return nil, jsonparser.NotExist
	}
	return value, kind
}
