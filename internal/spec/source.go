package spec

import "fmt"

// SourceKind discriminates the closed set of data source variants.
type SourceKind string

const (
	SourceCSV     SourceKind = "csv"
	SourceJSON    SourceKind = "json"
	SourceAPI     SourceKind = "api"
	SourceCall    SourceKind = "call"
	SourceLiteral SourceKind = "literal"
)

// DataSource is a recipe for materializing a parameter's data. It carries
// no data itself (except the literal variant); resolution is done lazily
// by the source loader.
type DataSource struct {
	Kind SourceKind

	// CSV fields.
	Path    string
	Options map[string]any

	// JSON fields. KeyPath is descended segment by segment after decode.
	KeyPath []string

	// API fields.
	URL       string
	Headers   map[string]string
	Transform string

	// Call fields.
	Callable string
	Args     map[string]any

	// Literal fields.
	Data any
}

// NewCSVSource builds a CSV file source. Options are loader-interpreted
// parse options such as "delimiter" and "header".
func NewCSVSource(path string, options map[string]any) (*DataSource, error) {
	if path == "" {
		return nil, fmt.Errorf("csv source requires a path")
	}
	return &DataSource{Kind: SourceCSV, Path: path, Options: options}, nil
}

// NewJSONSource builds a JSON file source that descends keyPath after
// decoding the file.
func NewJSONSource(path string, keyPath []string) (*DataSource, error) {
	if path == "" {
		return nil, fmt.Errorf("json source requires a path")
	}
	return &DataSource{Kind: SourceJSON, Path: path, KeyPath: keyPath}, nil
}

// NewAPISource builds a network fetch source. Transform names an optional
// registered callable applied to the decoded response body.
func NewAPISource(url string, headers map[string]string, transform string) (*DataSource, error) {
	if url == "" {
		return nil, fmt.Errorf("api source requires a url")
	}
	return &DataSource{Kind: SourceAPI, URL: url, Headers: headers, Transform: transform}, nil
}

// NewCallSource builds a source backed by a registered callable.
func NewCallSource(callable string, args map[string]any) (*DataSource, error) {
	if callable == "" {
		return nil, fmt.Errorf("call source requires a callable id")
	}
	return &DataSource{Kind: SourceCall, Callable: callable, Args: args}, nil
}

// NewLiteralSource builds a source that yields the inline value verbatim.
func NewLiteralSource(data any) *DataSource {
	return &DataSource{Kind: SourceLiteral, Data: data}
}
