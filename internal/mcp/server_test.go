package mcp

import (
	"context"
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	mcpclient "github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/salmonumbrella/notion-normalize/internal/normalize"
	"github.com/salmonumbrella/notion-normalize/internal/output"
)

const queryResponse = `{
	"object": "list",
	"results": [
		{"object": "page", "id": "p1", "properties": {
			"Task Name": {"id": "title", "type": "title", "title": [{"plain_text": "Write docs"}]},
			"Tags": {"id": "t", "type": "multi_select", "multi_select": [{"name": "a"}, {"name": "b"}]},
			"Done": {"id": "d", "type": "checkbox", "checkbox": true}
		}},
		{"object": "page", "id": "p2", "properties": {
			"Task Name": {"id": "title", "type": "title", "title": []},
			"Tags": {"id": "t", "type": "multi_select", "multi_select": []},
			"Done": {"id": "d", "type": "checkbox"}
		}}
	],
	"has_more": false
}`

const collidingPages = `[{"properties": {
	"Due Date": {"type": "date", "date": {"start": "2024-01-01"}},
	"due_date": {"type": "date", "date": {"start": "2024-02-02"}}
}}]`

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Request: mcp.Request{Method: "tools/call"},
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatal("nil result")
	}
	var text string
	for _, c := range result.Content {
		if tc, ok := mcp.AsTextContent(c); ok {
			text += tc.Text
		}
	}
	return text
}

func newTestServer(defaults Defaults) *Server {
	return NewServer("test", defaults, nil)
}

func TestHandleNormalize(t *testing.T) {
	s := newTestServer(Defaults{})

	result, err := s.handleNormalize(context.Background(), callRequest(ToolNormalize, map[string]interface{}{
		"input":  queryResponse,
		"output": "ndjson",
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("tool error: %s", resultText(t, result))
	}

	lines := strings.Split(strings.TrimSpace(resultText(t, result)), "\n")
	want := []string{
		`{"Task Name":"Write docs","Tags":["a","b"],"Done":true}`,
		`{"Task Name":null,"Tags":[],"Done":false}`,
	}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("got %q\nwant %q", lines, want)
	}
}

func TestHandleNormalize_CamelCaseAndQuery(t *testing.T) {
	s := newTestServer(Defaults{})

	result, err := s.handleNormalize(context.Background(), callRequest(ToolNormalize, map[string]interface{}{
		"input":     queryResponse,
		"camelcase": true,
		"query":     "[.[].taskName]",
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("tool error: %s", resultText(t, result))
	}

	var names []interface{}
	if err := json.Unmarshal([]byte(resultText(t, result)), &names); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if !reflect.DeepEqual(names, []interface{}{"Write docs", nil}) {
		t.Errorf("names = %v", names)
	}
}

func TestHandleNormalize_DefaultsApply(t *testing.T) {
	s := newTestServer(Defaults{CamelCase: true, Output: output.FormatCSV})

	result, err := s.handleNormalize(context.Background(), callRequest(ToolNormalize, map[string]interface{}{
		"input": queryResponse,
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	text := resultText(t, result)
	if !strings.HasPrefix(text, "taskName,tags,done\n") {
		t.Errorf("expected camelCase CSV header, got %q", text)
	}

	// Explicit arguments win over defaults.
	result, _ = s.handleNormalize(context.Background(), callRequest(ToolNormalize, map[string]interface{}{
		"input":     queryResponse,
		"camelcase": false,
		"output":    "csv",
	}))
	if text := resultText(t, result); !strings.HasPrefix(text, "Task Name,Tags,Done\n") {
		t.Errorf("expected raw CSV header, got %q", text)
	}
}

func TestHandleNormalize_Errors(t *testing.T) {
	tests := []struct {
		name     string
		defaults Defaults
		args     map[string]interface{}
		contains string
	}{
		{
			name:     "missing input",
			args:     map[string]interface{}{},
			contains: "input",
		},
		{
			name:     "bad collision policy",
			args:     map[string]interface{}{"input": queryResponse, "collision": "merge"},
			contains: "hint: Use one of: last, first, error",
		},
		{
			name:     "bad output format",
			args:     map[string]interface{}{"input": queryResponse, "output": "xml"},
			contains: "invalid output format",
		},
		{
			name:     "not JSON",
			args:     map[string]interface{}{"input": "hello"},
			contains: "not a JSON object or array",
		},
		{
			name:     "collision error policy",
			args:     map[string]interface{}{"input": collidingPages, "camelcase": true, "collision": "error"},
			contains: "dueDate",
		},
		{
			name:     "strict from defaults",
			defaults: Defaults{Strict: true},
			args:     map[string]interface{}{"input": `[{"properties": {"X": {"id": "x"}}}]`},
			contains: "property has no type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(tt.defaults)
			result, err := s.handleNormalize(context.Background(), callRequest(ToolNormalize, tt.args))
			if err != nil {
				t.Fatalf("handler returned protocol error: %v", err)
			}
			if !result.IsError {
				t.Fatalf("expected tool error, got %s", resultText(t, result))
			}
			if text := resultText(t, result); !strings.Contains(text, tt.contains) {
				t.Errorf("error %q does not contain %q", text, tt.contains)
			}
		})
	}
}

func TestHandleNormalize_CollisionFirst(t *testing.T) {
	s := newTestServer(Defaults{CamelCase: true, Collision: normalize.CollisionFirst, Output: output.FormatNDJSON})

	result, err := s.handleNormalize(context.Background(), callRequest(ToolNormalize, map[string]interface{}{
		"input": collidingPages,
	}))
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(resultText(t, result)); got != `{"dueDate":"2024-01-01"}` {
		t.Errorf("got %s", got)
	}
}

func TestHandlePropertyTypes(t *testing.T) {
	s := newTestServer(Defaults{})

	result, err := s.handlePropertyTypes(context.Background(), callRequest(ToolPropertyTypes, nil))
	if err != nil {
		t.Fatal(err)
	}

	var rules []map[string]string
	if err := json.Unmarshal([]byte(resultText(t, result)), &rules); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if len(rules) != len(normalize.Rules()) {
		t.Fatalf("expected %d rules, got %d", len(normalize.Rules()), len(rules))
	}
	if rules[0]["type"] != "title" || rules[0]["extraction"] != "title[0].plain_text" {
		t.Errorf("unexpected first rule %v", rules[0])
	}
}

func TestInProcessClient(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(Defaults{})

	client, err := mcpclient.NewInProcessClient(s.MCPServer())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if err := client.Start(ctx); err != nil {
		t.Fatalf("failed to start client: %v", err)
	}

	var initReq mcp.InitializeRequest
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "test", Version: "0"}
	if _, err := client.Initialize(ctx, initReq); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}

	tools, err := client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		t.Fatalf("list tools failed: %v", err)
	}
	names := map[string]bool{}
	for _, tool := range tools.Tools {
		names[tool.Name] = true
	}
	if !names[ToolNormalize] || !names[ToolPropertyTypes] {
		t.Errorf("expected both tools, got %v", names)
	}

	result, err := client.CallTool(ctx, callRequest(ToolNormalize, map[string]interface{}{
		"input":  `{"object": "page", "properties": {"Done": {"type": "checkbox", "checkbox": true}}}`,
		"output": "ndjson",
	}))
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if got := strings.TrimSpace(resultText(t, result)); got != `{"Done":true}` {
		t.Errorf("got %s", got)
	}
}
