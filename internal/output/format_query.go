package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/itchyny/gojq"

	clierrors "github.com/salmonumbrella/notion-normalize/internal/errors"
)

// runQuery runs a jq filter over data and collects every result.
func runQuery(query string, data interface{}) ([]interface{}, error) {
	query, _ = NormalizeQuery(query)

	code, err := CompileQuery(query)
	if err != nil {
		return nil, err
	}

	normalized, err := normalizeToInterface(data)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}

	results := []interface{}{}
	iter := code.Run(normalized)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if queryErr, isErr := v.(error); isErr {
			return nil, fmt.Errorf("query error: %s", safeErrorMessage(queryErr))
		}
		results = append(results, v)
	}
	return results, nil
}

// CompileQuery parses and compiles a jq filter. Commands call it up front so a
// bad filter fails before any input is read.
func CompileQuery(query string) (*gojq.Code, error) {
	parsed, err := gojq.Parse(query)
	if err != nil {
		return nil, formatInvalidQueryErr(err)
	}
	code, err := gojq.Compile(parsed)
	if err != nil {
		return nil, formatInvalidQueryErr(err)
	}
	return code, nil
}

func formatInvalidQueryErr(err error) error {
	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	if strings.Contains(msg, "unexpected eof") {
		return clierrors.WrapUserError(err, "invalid --query", "The filter looks incomplete; quote it fully")
	}
	return clierrors.WrapUserError(err, "invalid --query", "Example: --query '.[] | select(.Done)'")
}

// normalizeToInterface converts data to the map/slice form gojq and jsonpath
// expect by round-tripping it through JSON.
func normalizeToInterface(data interface{}) (interface{}, error) {
	switch data.(type) {
	case map[string]interface{}, []interface{}, nil:
		return data, nil
	}
	buf, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode data: %w", err)
	}
	var out interface{}
	if err := json.Unmarshal(buf, &out); err != nil {
		return nil, fmt.Errorf("failed to decode data: %w", err)
	}
	return out, nil
}

// safeErrorMessage returns a best-effort string for errors whose Error method
// may panic (seen with some gojq runtime errors on typed values).
func safeErrorMessage(err error) (msg string) {
	if err == nil {
		return "unknown error"
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			msg = fmt.Sprintf("%T", err)
		}
	}()

	msg = strings.TrimSpace(err.Error())
	if msg == "" {
		return fmt.Sprintf("%T", err)
	}
	return msg
}
