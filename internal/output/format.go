package output

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"

	clierrors "github.com/salmonumbrella/notion-normalize/internal/errors"
)

// Format represents the output format type.
type Format string

const (
	// FormatJSON is a pretty-printed JSON array (default).
	FormatJSON Format = "json"
	// FormatNDJSON is one compact JSON object per line.
	FormatNDJSON Format = "ndjson"
	// FormatYAML is a YAML sequence of mappings.
	FormatYAML Format = "yaml"
	// FormatTable is an aligned table, one row per record.
	FormatTable Format = "table"
	// FormatText is one "key: value" block per record.
	FormatText Format = "text"
	// FormatCSV is RFC 4180 CSV with a header row.
	FormatCSV Format = "csv"
)

// Formats lists every accepted format name.
var Formats = []Format{FormatJSON, FormatNDJSON, FormatYAML, FormatTable, FormatText, FormatCSV}

// Record is an ordered key/value row. It is the same type the normalizer
// produces, so records pass through without conversion.
type Record = orderedmap.OrderedMap[string, interface{}]

// NewRecord returns an empty record.
func NewRecord() *Record {
	return orderedmap.New[string, interface{}]()
}

// ParseFormat converts a string to a Format type.
// Empty string defaults to FormatJSON.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatJSON, "":
		return FormatJSON, nil
	case FormatNDJSON, "jsonl":
		return FormatNDJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	case FormatTable:
		return FormatTable, nil
	case FormatText:
		return FormatText, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", clierrors.NewUserError(
			fmt.Sprintf("invalid output format %q", s),
			"Use one of: json, ndjson, yaml, table, text, csv",
		)
	}
}

// Printer renders records in one format.
type Printer struct {
	w      io.Writer
	format Format
}

// NewPrinter creates a new Printer that writes to w in the given format.
func NewPrinter(w io.Writer, format Format) *Printer {
	return &Printer{w: w, format: format}
}

// PrintRecords writes records in the printer's format. Key order inside each
// record is kept for every format. A --jsonpath or --query in ctx is applied
// first; their results no longer carry key order.
func (p *Printer) PrintRecords(ctx context.Context, records []*Record) error {
	if records == nil {
		records = []*Record{}
	}

	path := JSONPathFromContext(ctx)
	query := QueryFromContext(ctx)
	if path == "" && query == "" {
		return p.printRecords(ctx, records)
	}

	var data interface{} = records
	if path != "" {
		extracted, err := applyJSONPath(data, path)
		if err != nil {
			return err
		}
		data = extracted
	}
	if query == "" {
		return p.printValues(ctx, []interface{}{data})
	}

	results, err := runQuery(query, data)
	if err != nil {
		return err
	}
	return p.printValues(ctx, results)
}

func (p *Printer) printRecords(ctx context.Context, records []*Record) error {
	switch p.format {
	case FormatJSON:
		return p.encodeJSON(records, !CompactJSONFromContext(ctx))
	case FormatNDJSON:
		for _, r := range records {
			if err := p.encodeJSON(r, false); err != nil {
				return err
			}
		}
		return nil
	case FormatYAML:
		return p.printYAML(records)
	case FormatTable:
		return p.printTable(records)
	case FormatText:
		return p.printText(records)
	case FormatCSV:
		return p.printCSV(records)
	default:
		return fmt.Errorf("unsupported format: %s", p.format)
	}
}

// printValues renders the results of a query or path extraction.
// Table, text and CSV need objects; JSON, NDJSON and YAML take anything.
func (p *Printer) printValues(ctx context.Context, values []interface{}) error {
	switch p.format {
	case FormatJSON:
		pretty := !CompactJSONFromContext(ctx)
		for _, v := range values {
			if err := p.encodeJSON(v, pretty); err != nil {
				return err
			}
		}
		return nil
	case FormatNDJSON:
		for _, v := range values {
			if err := p.encodeJSON(v, false); err != nil {
				return err
			}
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		for _, v := range values {
			if err := enc.Encode(v); err != nil {
				return err
			}
		}
		return enc.Close()
	}

	records, ok := recordsFromValues(values)
	if !ok {
		if p.format == FormatText {
			return p.printScalars(values)
		}
		return clierrors.NewUserError(
			fmt.Sprintf("%s output needs objects, the filter produced other values", p.format),
			"Use --output json or change the filter to produce objects",
		)
	}
	return p.printRecords(ctx, records)
}

func (p *Printer) encodeJSON(v interface{}, pretty bool) error {
	enc := json.NewEncoder(p.w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// printYAML emits records as a sequence of mappings built node by node so
// key order survives.
func (p *Printer) printYAML(records []*Record) error {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, r := range records {
		node, err := recordNode(r)
		if err != nil {
			return err
		}
		seq.Content = append(seq.Content, node)
	}

	enc := yaml.NewEncoder(p.w)
	enc.SetIndent(2)
	if err := enc.Encode(seq); err != nil {
		return err
	}
	return enc.Close()
}

func recordNode(r *Record) (*yaml.Node, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for pair := r.Oldest(); pair != nil; pair = pair.Next() {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: pair.Key}
		value, err := valueNode(pair.Value)
		if err != nil {
			return nil, fmt.Errorf("encode %q: %w", pair.Key, err)
		}
		node.Content = append(node.Content, key, value)
	}
	return node, nil
}

// valueNode encodes one record value. Raw JSON is parsed as YAML (JSON is a
// subset) so object keys keep their source order, then printed in the default style.
func valueNode(v interface{}) (*yaml.Node, error) {
	raw, ok := v.(json.RawMessage)
	if !ok {
		node := &yaml.Node{}
		if err := node.Encode(v); err != nil {
			return nil, err
		}
		return node, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	}
	blockStyle(doc.Content[0])
	return doc.Content[0], nil
}

func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

// printTable renders one row per record under the union of keys.
// Missing and null cells show "-".
func (p *Printer) printTable(records []*Record) error {
	cols := columns(records)
	if len(cols) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, strings.Join(cols, "\t"))
	for _, r := range records {
		_, _ = fmt.Fprintln(tw, strings.Join(cells(r, cols, tableCell), "\t"))
	}
	return tw.Flush()
}

// printText writes one aligned "key: value" block per record, blocks
// separated by a blank line.
func (p *Printer) printText(records []*Record) error {
	tw := tabwriter.NewWriter(p.w, 0, 0, 1, ' ', 0)
	for i, r := range records {
		if i > 0 {
			_, _ = fmt.Fprintln(tw)
		}
		for pair := r.Oldest(); pair != nil; pair = pair.Next() {
			_, _ = fmt.Fprintf(tw, "%s:\t%s\n", pair.Key, tableCell(pair.Value))
		}
	}
	return tw.Flush()
}

func (p *Printer) printScalars(values []interface{}) error {
	for _, v := range values {
		if _, err := fmt.Fprintln(p.w, formatCell(v, "null")); err != nil {
			return err
		}
	}
	return nil
}

// printCSV writes a header from the union of keys in first-seen order, then
// one row per record. Missing and null cells are empty.
func (p *Printer) printCSV(records []*Record) error {
	cols := columns(records)
	if len(cols) == 0 {
		return nil
	}

	w := csv.NewWriter(p.w)
	if err := w.Write(cols); err != nil {
		return err
	}
	for _, r := range records {
		if err := w.Write(cells(r, cols, csvCell)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// columns returns the union of record keys in first-seen order.
func columns(records []*Record) []string {
	var cols []string
	seen := make(map[string]bool)
	for _, r := range records {
		for pair := r.Oldest(); pair != nil; pair = pair.Next() {
			if !seen[pair.Key] {
				seen[pair.Key] = true
				cols = append(cols, pair.Key)
			}
		}
	}
	return cols
}

func cells(r *Record, cols []string, format func(interface{}) string) []string {
	row := make([]string, len(cols))
	for i, col := range cols {
		v, _ := r.Get(col)
		row[i] = format(v)
	}
	return row
}

// recordsFromValues turns query results into records when every result is an
// object or a list of objects. Keys come out sorted, as gojq emits them.
func recordsFromValues(values []interface{}) ([]*Record, bool) {
	var out []*Record
	for _, v := range values {
		switch x := v.(type) {
		case map[string]interface{}:
			out = append(out, recordFromMap(x))
		case []interface{}:
			for _, item := range x {
				m, ok := item.(map[string]interface{})
				if !ok {
					return nil, false
				}
				out = append(out, recordFromMap(m))
			}
		default:
			return nil, false
		}
	}
	return out, true
}

func recordFromMap(m map[string]interface{}) *Record {
	r := orderedmap.New[string, interface{}](len(m))
	for _, k := range sortedKeys(m) {
		r.Set(k, m[k])
	}
	return r
}
