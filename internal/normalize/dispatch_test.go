package normalize

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/salmonumbrella/notion-normalize/internal/notion"
)

func mustProperty(t *testing.T, raw string) notion.PropertyValue {
	t.Helper()
	v, err := notion.ParsePropertyValue([]byte(raw))
	if err != nil {
		t.Fatalf("parse property %s: %v", raw, err)
	}
	return v
}

func TestValue(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  interface{}
	}{
		{name: "title", input: `{"type":"title","title":[{"plain_text":"Test Title"}]}`, want: "Test Title"},
		{name: "title first segment only", input: `{"type":"title","title":[{"plain_text":"A"},{"plain_text":"B"}]}`, want: "A"},
		{name: "title empty", input: `{"type":"title","title":[]}`, want: nil},
		{name: "title absent", input: `{"type":"title"}`, want: nil},
		{name: "title empty string segment", input: `{"type":"title","title":[{"plain_text":""}]}`, want: ""},
		{name: "title segment without plain_text", input: `{"type":"title","title":[{"type":"text"}]}`, want: nil},
		{name: "title escaped text", input: `{"type":"title","title":[{"plain_text":"Say \"hi\"\n"}]}`, want: "Say \"hi\"\n"},
		{name: "rich_text", input: `{"type":"rich_text","rich_text":[{"plain_text":"Test Description"}]}`, want: "Test Description"},
		{name: "rich_text empty", input: `{"type":"rich_text","rich_text":[]}`, want: nil},
		{name: "url", input: `{"type":"url","url":"https://example.com"}`, want: "https://example.com"},
		{name: "url null", input: `{"type":"url","url":null}`, want: nil},
		{name: "select", input: `{"type":"select","select":{"name":"Option1"}}`, want: "Option1"},
		{name: "select null", input: `{"type":"select","select":null}`, want: nil},
		{name: "multi_select", input: `{"type":"multi_select","multi_select":[{"name":"Tag1"},{"name":"Tag2"}]}`, want: []string{"Tag1", "Tag2"}},
		{name: "multi_select absent", input: `{"type":"multi_select"}`, want: []string{}},
		{name: "multi_select null", input: `{"type":"multi_select","multi_select":null}`, want: []string{}},
		{name: "multi_select skips nameless", input: `{"type":"multi_select","multi_select":[{"id":"x"},{"name":"Tag"}]}`, want: []string{"Tag"}},
		{name: "checkbox true", input: `{"type":"checkbox","checkbox":true}`, want: true},
		{name: "checkbox false", input: `{"type":"checkbox","checkbox":false}`, want: false},
		{name: "checkbox absent", input: `{"type":"checkbox"}`, want: false},
		{name: "checkbox wrong type", input: `{"type":"checkbox","checkbox":"yes"}`, want: false},
		{name: "number", input: `{"type":"number","number":42}`, want: float64(42)},
		{name: "number zero", input: `{"type":"number","number":0}`, want: float64(0)},
		{name: "number null", input: `{"type":"number","number":null}`, want: nil},
		{name: "date", input: `{"type":"date","date":{"start":"2023-01-01","end":null}}`, want: "2023-01-01"},
		{name: "date null", input: `{"type":"date","date":null}`, want: nil},
		{name: "status", input: `{"type":"status","status":{"name":"In Progress"}}`, want: "In Progress"},
		{name: "email", input: `{"type":"email","email":"test@example.com"}`, want: "test@example.com"},
		{name: "phone_number", input: `{"type":"phone_number","phone_number":"123-456-7890"}`, want: "123-456-7890"},
		{name: "created_time", input: `{"type":"created_time","created_time":"2023-01-01T12:00:00Z"}`, want: "2023-01-01T12:00:00Z"},
		{name: "created_by", input: `{"type":"created_by","created_by":{"id":"user1"}}`, want: json.RawMessage(`{"id":"user1"}`)},
		{name: "last_edited_time", input: `{"type":"last_edited_time","last_edited_time":"2023-01-02T12:00:00Z"}`, want: "2023-01-02T12:00:00Z"},
		{name: "last_edited_by", input: `{"type":"last_edited_by","last_edited_by":{"id":"user2"}}`, want: json.RawMessage(`{"id":"user2"}`)},
		{name: "last_edited_by absent", input: `{"type":"last_edited_by"}`, want: nil},
		{name: "id", input: `{"type":"id","id":"page-123"}`, want: "page-123"},
		{
			name:  "unknown type returns payload",
			input: `{"type":"formula","formula":{"type":"string","string":"42"}}`,
			want:  json.RawMessage(`{"type":"string","string":"42"}`),
		},
		{
			name:  "unknown type array payload",
			input: `{"type":"relation","relation":[{"id":"a"},{"id":"b"}]}`,
			want:  json.RawMessage(`[{"id":"a"},{"id":"b"}]`),
		},
		{name: "unknown type scalar payload", input: `{"type":"unique_id_text","unique_id_text":"TASK-1"}`, want: "TASK-1"},
		{
			name:  "opaque payload keeps key order",
			input: `{"type":"created_by","created_by":{"z":1, "a":2}}`,
			want:  json.RawMessage(`{"z":1, "a":2}`),
		},
		{name: "unknown type missing payload", input: `{"type":"button"}`, want: nil},
		{name: "missing type", input: `{"title":[{"plain_text":"x"}]}`, want: nil},
		{name: "not an object", input: `"just a string"`, want: nil},
		{name: "bracket type", input: `{"type":"[0]"}`, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Value(mustProperty(t, tt.input))
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("want %#v, got %#v", tt.want, got)
			}
		})
	}
}

func TestValue_ZeroPropertyValue(t *testing.T) {
	if got := Value(notion.PropertyValue{}); got != nil {
		t.Fatalf("want nil, got %#v", got)
	}
}

func TestValue_CheckboxDefaultDiffersFromNull(t *testing.T) {
	for _, typ := range KnownTypes() {
		got := Value(mustProperty(t, `{"type":"`+typ+`"}`))
		switch typ {
		case "checkbox":
			if got != false {
				t.Errorf("%s: want false, got %#v", typ, got)
			}
		case "multi_select":
			if !reflect.DeepEqual(got, []string{}) {
				t.Errorf("%s: want empty slice, got %#v", typ, got)
			}
		default:
			if got != nil {
				t.Errorf("%s: want nil, got %#v", typ, got)
			}
		}
	}
}

func TestRules(t *testing.T) {
	all := Rules()
	if len(all) != len(KnownTypes())+1 {
		t.Fatalf("expected %d rules, got %d", len(KnownTypes())+1, len(all))
	}
	if last := all[len(all)-1]; last.Type != FallbackRule.Type {
		t.Errorf("last rule = %q, want fallback", last.Type)
	}

	seen := map[string]bool{}
	for _, typ := range KnownTypes() {
		if seen[typ] {
			t.Errorf("duplicate rule for %q", typ)
		}
		seen[typ] = true
	}
	for _, typ := range []string{"title", "rich_text", "url", "select", "multi_select", "checkbox", "number", "date", "status", "email", "phone_number", "created_time", "created_by", "last_edited_time", "last_edited_by", "id"} {
		if !seen[typ] {
			t.Errorf("missing rule for %q", typ)
		}
	}
}

func TestRuleRecords(t *testing.T) {
	recs := RuleRecords()
	if len(recs) != len(Rules()) {
		t.Fatalf("expected %d records, got %d", len(Rules()), len(recs))
	}
	if got := recordKeys(recs[0]); !reflect.DeepEqual(got, []string{"type", "extraction", "default"}) {
		t.Errorf("keys = %v", got)
	}
	if v, _ := recs[4].Get("type"); v != "multi_select" {
		t.Errorf("fifth rule = %v, want multi_select", v)
	}
	if v, _ := recs[4].Get("default"); v != "[]" {
		t.Errorf("multi_select default = %v, want []", v)
	}
}
