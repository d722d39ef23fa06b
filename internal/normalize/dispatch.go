package normalize

import (
	"encoding/json"
	"strings"

	"github.com/buger/jsonparser"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/salmonumbrella/notion-normalize/internal/notion"
)

// Extractor turns one property value into its plain form.
// Extractors never fail: anything they cannot read yields the default for their type.
type Extractor func(v notion.PropertyValue) interface{}

// Rule describes how one property type is flattened.
type Rule struct {
	Type       string `json:"type" yaml:"type"`
	Extraction string `json:"extraction" yaml:"extraction"`
	Default    string `json:"default" yaml:"default"`

	extract Extractor
}

// rules is the dispatch table in documentation order.
var rules = []Rule{
	{Type: "title", Extraction: "title[0].plain_text", Default: "null", extract: firstPlainText("title")},
	{Type: "rich_text", Extraction: "rich_text[0].plain_text", Default: "null", extract: firstPlainText("rich_text")},
	{Type: "url", Extraction: "url", Default: "null", extract: stringField("url")},
	{Type: "select", Extraction: "select.name", Default: "null", extract: stringField("select", "name")},
	{Type: "multi_select", Extraction: "multi_select[*].name", Default: "[]", extract: optionNames("multi_select")},
	{Type: "checkbox", Extraction: "checkbox", Default: "false", extract: checkbox},
	{Type: "number", Extraction: "number", Default: "null", extract: number},
	{Type: "date", Extraction: "date.start", Default: "null", extract: stringField("date", "start")},
	{Type: "status", Extraction: "status.name", Default: "null", extract: stringField("status", "name")},
	{Type: "email", Extraction: "email", Default: "null", extract: stringField("email")},
	{Type: "phone_number", Extraction: "phone_number", Default: "null", extract: stringField("phone_number")},
	{Type: "created_time", Extraction: "created_time", Default: "null", extract: stringField("created_time")},
	{Type: "created_by", Extraction: "created_by (unmodified)", Default: "null", extract: opaqueField("created_by")},
	{Type: "last_edited_time", Extraction: "last_edited_time", Default: "null", extract: stringField("last_edited_time")},
	{Type: "last_edited_by", Extraction: "last_edited_by (unmodified)", Default: "null", extract: opaqueField("last_edited_by")},
	{Type: "id", Extraction: "id", Default: "null", extract: stringField("id")},
}

var registry = func() map[string]Extractor {
	m := make(map[string]Extractor, len(rules))
	for _, r := range rules {
		m[r.Type] = r.extract
	}
	return m
}()

// FallbackRule describes what happens to property types without a dedicated rule.
var FallbackRule = Rule{
	Type:       "*",
	Extraction: "<type> field (unmodified)",
	Default:    "null",
}

// Rules returns the dispatch table, ending with the fallback rule.
func Rules() []Rule {
	out := make([]Rule, 0, len(rules)+1)
	out = append(out, rules...)
	return append(out, FallbackRule)
}

// Record returns the rule as a type/extraction/default row.
func (r Rule) Record() *Record {
	rec := orderedmap.New[string, interface{}](3)
	rec.Set("type", r.Type)
	rec.Set("extraction", r.Extraction)
	rec.Set("default", r.Default)
	return rec
}

// RuleRecords returns Rules as records, for display.
func RuleRecords() []*Record {
	all := Rules()
	out := make([]*Record, len(all))
	for i, r := range all {
		out[i] = r.Record()
	}
	return out
}

// KnownTypes lists the property types that have a dedicated rule.
func KnownTypes() []string {
	out := make([]string, 0, len(rules))
	for _, r := range rules {
		out = append(out, r.Type)
	}
	return out
}

// Value returns the plain form of a property value: a string, []string, bool,
// float64, json.RawMessage for object and array payloads, or nil.
//
// Types without a dedicated rule return the payload field named like the type,
// so {"type":"formula","formula":{...}} yields the formula object as is.
// A property without a type yields nil.
func Value(v notion.PropertyValue) interface{} {
	if extract, ok := registry[v.Type]; ok {
		return extract(v)
	}
	if v.Type == "" || strings.HasPrefix(v.Type, "[") {
		return nil
	}
	return decode(v.Lookup(v.Type))
}

func firstPlainText(field string) Extractor {
	return stringField(field, "[0]", "plain_text")
}

func stringField(path ...string) Extractor {
	return func(v notion.PropertyValue) interface{} {
		raw, kind := v.Lookup(path...)
		if kind != jsonparser.String {
			return nil
		}
		s, err := jsonparser.ParseString(raw)
		if err != nil {
			return nil
		}
		return s
	}
}

func optionNames(field string) Extractor {
	return func(v notion.PropertyValue) interface{} {
		names := []string{}
		raw, kind := v.Lookup(field)
		if kind != jsonparser.Array {
			return names
		}
		_, _ = jsonparser.ArrayEach(raw, func(item []byte, itemKind jsonparser.ValueType, _ int, _ error) {
			if itemKind != jsonparser.Object {
				return
			}
			if name, err := jsonparser.GetString(item, "name"); err == nil {
				names = append(names, name)
			}
		})
		return names
	}
}

func checkbox(v notion.PropertyValue) interface{} {
	raw, kind := v.Lookup("checkbox")
	if kind != jsonparser.Boolean {
		return false
	}
	b, err := jsonparser.ParseBoolean(raw)
	if err != nil {
		return false
	}
	return b
}

func number(v notion.PropertyValue) interface{} {
	raw, kind := v.Lookup("number")
	if kind != jsonparser.Number {
		return nil
	}
	f, err := jsonparser.ParseFloat(raw)
	if err != nil {
		return nil
	}
	return f
}

func opaqueField(field string) Extractor {
	return func(v notion.PropertyValue) interface{} {
		return decode(v.Lookup(field))
	}
}

// decode converts a raw JSON fragment to a plain value. Objects and arrays
// stay raw JSON so their key order and layout reach the output unchanged.
func decode(raw []byte, kind jsonparser.ValueType) interface{} {
	switch kind {
	case jsonparser.String:
		s, err := jsonparser.ParseString(raw)
		if err != nil {
			return nil
		}
		return s
	case jsonparser.Number:
		f, err := jsonparser.ParseFloat(raw)
		if err != nil {
			return nil
		}
		return f
	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(raw)
		if err != nil {
			return nil
		}
		return b
	case jsonparser.Object, jsonparser.Array:
		if !json.Valid(raw) {
			return nil
		}
		return append(json.RawMessage(nil), raw...)
	default:
		return nil
	}
}
