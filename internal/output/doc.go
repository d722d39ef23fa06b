// Package output renders normalized records.
//
// Formats:
//   - json: pretty-printed array (default)
//   - ndjson: one compact object per line
//   - yaml: sequence of mappings
//   - table: aligned columns, one row per record
//   - text: "key: value" blocks
//   - csv: header row plus one row per record
//
// Every format keeps the key order of each record. Table and CSV columns are
// the union of keys in first-seen order.
//
// Options travel in the context, set once by the root command:
//
//	ctx = output.WithFormat(ctx, format)
//	ctx = output.WithQuery(ctx, query)
//	...
//	printer := output.NewPrinter(stdout, output.FormatFromContext(ctx))
//	return printer.PrintRecords(ctx, records)
//
// A --jsonpath expression is evaluated first, then a --query jq filter.
// Their results are plain JSON values, so objects come out with sorted keys.
package output
