// Package batch reads collections of Notion pages from query responses,
// JSON arrays, single page objects, or NDJSON streams.
package batch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/buger/jsonparser"

	clierrors "github.com/salmonumbrella/notion-normalize/internal/errors"
	"github.com/salmonumbrella/notion-normalize/internal/notion"
)

const (
	// MaxInputSize is the maximum input size (64MB).
	MaxInputSize = 64 * 1024 * 1024
	// MaxItemCount is the maximum number of pages in one input.
	MaxItemCount = 100000
)

// Shape identifies the layout an input was decoded from.
type Shape string

const (
	ShapeList   Shape = "list"
	ShapeArray  Shape = "array"
	ShapePage   Shape = "page"
	ShapeNDJSON Shape = "ndjson"
)

// Input is a decoded page collection.
type Input struct {
	Shape      Shape
	Pages      []notion.Page
	NextCursor *string
	HasMore    bool
}

// ReadFile reads pages from path, or from stdin when path is "-".
func ReadFile(path string, stdin io.Reader) (*Input, error) {
	if path == "" {
		return nil, fmt.Errorf("input file path is required")
	}
	if path == "-" {
		if stdin == nil {
			stdin = os.Stdin
		}
		return Read("stdin", stdin)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot stat file: %w", err)
	}
	if info.Size() > MaxInputSize {
		return nil, fmt.Errorf("file exceeds maximum size of %d bytes", MaxInputSize)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Read(path, f)
}

// Read reads all of r and decodes it. source names the input in errors.
func Read(source string, r io.Reader) (*Input, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxInputSize+1))
	if err != nil {
		return nil, clierrors.WrapInput(source, -1, err)
	}
	if len(data) > MaxInputSize {
		return nil, fmt.Errorf("%s exceeds maximum size of %d bytes", source, MaxInputSize)
	}
	in, err := Decode(data)
	if err != nil {
		return nil, wrapSource(source, err)
	}
	return in, nil
}

// Decode detects the input layout and decodes the pages it holds.
func Decode(data []byte) (*Input, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, clierrors.NewUserError("no input", "Pipe a database query response into stdin or pass a file path")
	}

	switch trimmed[0] {
	case '[':
		in := &Input{Shape: ShapeArray, Pages: []notion.Page{}}
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, clierrors.WrapInput("", -1, err)
		}
		for i, raw := range items {
			if err := in.add(raw, i); err != nil {
				return nil, err
			}
		}
		return in, nil
	case '{':
		return decodeObjects(trimmed)
	default:
		return nil, clierrors.NewUserError(
			"input is not a JSON object or array",
			"Pass a database query response, an array of pages, or NDJSON pages",
		)
	}
}

func decodeObjects(data []byte) (*Input, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	var first json.RawMessage
	if err := dec.Decode(&first); err != nil {
		return nil, clierrors.WrapInput("", 0, err)
	}
	if !dec.More() {
		return decodeSingle(first)
	}

	in := &Input{Shape: ShapeNDJSON, Pages: []notion.Page{}}
	raw := first
	for i := 0; ; i++ {
		if err := in.add(raw, i); err != nil {
			return nil, err
		}

		raw = nil
		if err := dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, clierrors.WrapInput("", i+1, err)
		}
	}
	return in, nil
}

func decodeSingle(obj json.RawMessage) (*Input, error) {
	if isQueryResponse(obj) {
		resp, err := decodeResponse(obj, -1)
		if err != nil {
			return nil, err
		}
		pages := resp.Results
		if pages == nil {
			pages = []notion.Page{}
		}
		return &Input{Shape: ShapeList, Pages: pages, NextCursor: resp.NextCursor, HasMore: resp.HasMore}, nil
	}

	page, err := decodePage(obj, -1)
	if err != nil {
		return nil, err
	}
	return &Input{Shape: ShapePage, Pages: []notion.Page{page}}, nil
}

// add appends one array or NDJSON item. An item that is itself a query
// response contributes its results, so concatenated batches decode as one
// collection; the cursor of the last such item is kept.
func (in *Input) add(raw json.RawMessage, item int) error {
	if isQueryResponse(raw) {
		resp, err := decodeResponse(raw, item)
		if err != nil {
			return err
		}
		in.Pages = append(in.Pages, resp.Results...)
		in.HasMore = resp.HasMore
		in.NextCursor = resp.NextCursor
		return checkCount(len(in.Pages))
	}

	page, err := decodePage(raw, item)
	if err != nil {
		return err
	}
	in.Pages = append(in.Pages, page)
	return checkCount(len(in.Pages))
}

func isQueryResponse(raw []byte) bool {
	_, _, _, err := jsonparser.Get(raw, "results")
	return err == nil
}

func decodeResponse(raw []byte, item int) (*notion.QueryResponse, error) {
	if _, kind, _, _ := jsonparser.Get(raw, "results"); kind != jsonparser.Array {
		return nil, clierrors.WrapInput("", item, clierrors.NewUserError(
			"\"results\" is not an array",
			"Pass the raw response of a database query",
		))
	}
	var resp notion.QueryResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, clierrors.WrapInput("", item, err)
	}
	if err := checkCount(len(resp.Results)); err != nil {
		return nil, err
	}
	return &resp, nil
}

func decodePage(raw []byte, item int) (notion.Page, error) {
	if _, kind, _, err := jsonparser.Get(raw, "properties"); err != nil || kind != jsonparser.Object {
		userErr := clierrors.NewUserError(
			"input object has neither \"results\" nor a \"properties\" object",
			"Pass a database query response or page objects",
		)
		if item < 0 {
			return notion.Page{}, userErr
		}
		return notion.Page{}, clierrors.WrapInput("", item, userErr)
	}
	var page notion.Page
	if err := json.Unmarshal(raw, &page); err != nil {
		return notion.Page{}, clierrors.WrapInput("", item, err)
	}
	return page, nil
}

func checkCount(n int) error {
	if n > MaxItemCount {
		return fmt.Errorf("input exceeds maximum item count of %d", MaxItemCount)
	}
	return nil
}

func wrapSource(source string, err error) error {
	var inErr *clierrors.InputError
	if errors.As(err, &inErr) && inErr.Source == "" {
		return clierrors.WrapInput(source, inErr.Item, inErr.Err)
	}
	return err
}
