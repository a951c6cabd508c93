package source

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"unicode/utf8"

	"resty.dev/v3"

	"github.com/vk/optspec/internal/ctxlog"
	"github.com/vk/optspec/internal/spec"
)

// Loader resolves data source recipes to materialized data. It is safe
// for concurrent use; one instance is shared by all sessions.
type Loader struct {
	callables *Callables
	http      *resty.Client
}

// NewLoader creates a loader backed by the given callable table.
func NewLoader(callables *Callables) *Loader {
	return &Loader{
		callables: callables,
		http:      resty.New(),
	}
}

// Close releases the loader's HTTP client resources.
func (l *Loader) Close() error {
	return l.http.Close()
}

// Load resolves src to data. The shape of the result depends on the
// variant: CSV yields one map per row keyed by column, JSON and API yield
// the decoded value, Call yields whatever the callable returns, Literal
// yields the inline value verbatim.
func (l *Loader) Load(ctx context.Context, src *spec.DataSource) (any, error) {
	logger := ctxlog.FromContext(ctx)
	switch src.Kind {
	case spec.SourceCSV:
		logger.Debug("Loading CSV source.", "path", src.Path)
		return l.loadCSV(src)
	case spec.SourceJSON:
		logger.Debug("Loading JSON source.", "path", src.Path, "key_path", src.KeyPath)
		return l.loadJSON(src)
	case spec.SourceAPI:
		logger.Debug("Loading API source.", "url", src.URL)
		return l.loadAPI(ctx, src)
	case spec.SourceCall:
		logger.Debug("Loading callable source.", "callable", src.Callable)
		return l.loadCall(ctx, src)
	case spec.SourceLiteral:
		return src.Data, nil
	default:
		return nil, fmt.Errorf("unhandled source kind %q", src.Kind)
	}
}

func (l *Loader) loadCSV(src *spec.DataSource) (any, error) {
	f, err := os.Open(src.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, newLoadError(KindNotFound, src.Path, err)
		}
		return nil, newLoadError(KindParseFailure, src.Path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	if d, ok := src.Options["delimiter"].(string); ok && len(d) > 0 {
		delim, size := utf8.DecodeRuneInString(d)
		if delim == utf8.RuneError || size != len(d) {
			return nil, newLoadError(KindParseFailure, src.Path,
				fmt.Errorf("delimiter %q must be a single character", d))
		}
		reader.Comma = delim
	}
	records, err := reader.ReadAll()
	if err != nil {
		return nil, newLoadError(KindParseFailure, src.Path, err)
	}
	if len(records) == 0 {
		return []map[string]any{}, nil
	}

	header := true
	if h, ok := src.Options["header"].(bool); ok {
		header = h
	}
	if !header {
		rows := make([][]any, 0, len(records))
		for _, rec := range records {
			row := make([]any, len(rec))
			for i, cell := range rec {
				row[i] = coerceCell(cell)
			}
			rows = append(rows, row)
		}
		return rows, nil
	}

	columns := records[0]
	rows := make([]map[string]any, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) != len(columns) {
			return nil, newLoadError(KindParseFailure, src.Path,
				fmt.Errorf("row has %d cells, header has %d", len(rec), len(columns)))
		}
		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = coerceCell(rec[i])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// coerceCell converts a CSV cell to a number when it parses as one so
// downstream arithmetic never sees numeric strings.
func coerceCell(cell string) any {
	if n, err := strconv.ParseFloat(cell, 64); err == nil {
		return n
	}
	return cell
}

func (l *Loader) loadJSON(src *spec.DataSource) (any, error) {
	raw, err := os.ReadFile(src.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, newLoadError(KindNotFound, src.Path, err)
		}
		return nil, newLoadError(KindParseFailure, src.Path, err)
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, newLoadError(KindParseFailure, src.Path, err)
	}

	for i, key := range src.KeyPath {
		obj, ok := data.(map[string]any)
		if !ok {
			return nil, newLoadError(KindKeyPathMissing, src.Path,
				fmt.Errorf("key path segment %q: value at depth %d is not an object", key, i))
		}
		data, ok = obj[key]
		if !ok {
			return nil, newLoadError(KindKeyPathMissing, src.Path,
				fmt.Errorf("key path segment %q is absent", key))
		}
	}
	return data, nil
}

func (l *Loader) loadAPI(ctx context.Context, src *spec.DataSource) (any, error) {
	res, err := l.http.R().
		SetContext(ctx).
		SetHeaders(src.Headers).
		Get(src.URL)
	if err != nil {
		return nil, newLoadError(KindUnreachable, src.URL, err)
	}
	if !res.IsSuccess() {
		return nil, newLoadError(KindUnreachable, src.URL,
			fmt.Errorf("unexpected status %s", res.Status()))
	}

	var body any
	if err := json.Unmarshal(res.Bytes(), &body); err != nil {
		return nil, newLoadError(KindParseFailure, src.URL, err)
	}

	if src.Transform != "" {
		fn, err := l.callables.Lookup(src.Transform)
		if err != nil {
			return nil, newLoadError(KindCallableFailed, src.Transform, err)
		}
		body, err = fn(ctx, map[string]any{"body": body})
		if err != nil {
			return nil, newLoadError(KindCallableFailed, src.Transform, err)
		}
	}
	return body, nil
}

func (l *Loader) loadCall(ctx context.Context, src *spec.DataSource) (any, error) {
	fn, err := l.callables.Lookup(src.Callable)
	if err != nil {
		return nil, newLoadError(KindCallableFailed, src.Callable, err)
	}
	data, err := fn(ctx, src.Args)
	if err != nil {
		return nil, newLoadError(KindCallableFailed, src.Callable, err)
	}
	return data, nil
}
