package source

import "fmt"

// Rows shapes loader output into table rows in schema column order.
// Accepted input shapes: a slice of column-keyed maps (CSV with header,
// JSON arrays of objects) or a slice of positional rows already matching
// the schema width.
func Rows(data any, schema []string) ([][]any, error) {
	switch d := data.(type) {
	case [][]any:
		for i, row := range d {
			if len(row) != len(schema) {
				return nil, fmt.Errorf("row %d has %d cells, schema has %d columns", i, len(row), len(schema))
			}
		}
		return d, nil
	case []map[string]any:
		rows := make([][]any, 0, len(d))
		for i, rec := range d {
			row, err := projectRow(rec, schema)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
			rows = append(rows, row)
		}
		return rows, nil
	case []any:
		rows := make([][]any, 0, len(d))
		for i, el := range d {
			switch rec := el.(type) {
			case map[string]any:
				row, err := projectRow(rec, schema)
				if err != nil {
					return nil, fmt.Errorf("row %d: %w", i, err)
				}
				rows = append(rows, row)
			case []any:
				if len(rec) != len(schema) {
					return nil, fmt.Errorf("row %d has %d cells, schema has %d columns", i, len(rec), len(schema))
				}
				rows = append(rows, rec)
			default:
				return nil, fmt.Errorf("row %d has unsupported shape %T", i, el)
			}
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("tabular data has unsupported shape %T", data)
	}
}

func projectRow(rec map[string]any, schema []string) ([]any, error) {
	row := make([]any, len(schema))
	for i, col := range schema {
		v, ok := rec[col]
		if !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
		row[i] = v
	}
	return row, nil
}

// Mapping shapes loader output into a key-to-value map. Accepted input
// shapes: a map (returned as is) or a slice of records keyed by column,
// from which keyColumn selects the key and the single remaining column
// the value. Records with more than two columns map the key to the whole
// record minus the key column.
func Mapping(data any, keyColumn string) (map[string]any, error) {
	switch d := data.(type) {
	case map[string]any:
		return d, nil
	case []map[string]any:
		return mappingFromRecords(d, keyColumn)
	case []any:
		recs := make([]map[string]any, 0, len(d))
		for i, el := range d {
			rec, ok := el.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("record %d has unsupported shape %T", i, el)
			}
			recs = append(recs, rec)
		}
		return mappingFromRecords(recs, keyColumn)
	default:
		return nil, fmt.Errorf("mapping data has unsupported shape %T", data)
	}
}

func mappingFromRecords(recs []map[string]any, keyColumn string) (map[string]any, error) {
	out := make(map[string]any, len(recs))
	for i, rec := range recs {
		keyVal, ok := rec[keyColumn]
		if !ok {
			return nil, fmt.Errorf("record %d missing key column %q", i, keyColumn)
		}
		key, ok := keyVal.(string)
		if !ok {
			key = fmt.Sprint(keyVal)
		}
		if len(rec) == 2 {
			for col, v := range rec {
				if col != keyColumn {
					out[key] = v
				}
			}
			continue
		}
		rest := make(map[string]any, len(rec)-1)
		for col, v := range rec {
			if col != keyColumn {
				rest[col] = v
			}
		}
		out[key] = rest
	}
	return out, nil
}
