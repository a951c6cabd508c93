package spec

import "fmt"

// ParameterKind discriminates the closed set of parameter variants.
type ParameterKind string

const (
	ParamTable   ParameterKind = "table"
	ParamMapping ParameterKind = "mapping"
	ParamScalar  ParameterKind = "scalar"
)

// Parameter is named input data for a specification: tabular, key-valued,
// or a plain scalar. Table and Mapping parameters are backed by a
// DataSource and carry their materialized data once loaded.
type Parameter struct {
	Kind ParameterKind

	// Table fields. Schema is the declared ordered column set; Rows is
	// cached data in schema column order, nil until materialized.
	Schema []string
	Rows   [][]any

	// Mapping fields. Map is cached data, nil until materialized.
	KeyColumn string
	Map       map[string]any

	// Shared by Table and Mapping.
	Source *DataSource

	// Scalar fields.
	Value any
	Type  string
}

// NewTableParameter builds a tabular parameter. The schema must declare at
// least one column.
func NewTableParameter(schema []string, source *DataSource) (*Parameter, error) {
	if len(schema) == 0 {
		return nil, fmt.Errorf("table parameter requires a non-empty schema")
	}
	if source == nil {
		return nil, fmt.Errorf("table parameter requires a source")
	}
	cols := make([]string, len(schema))
	copy(cols, schema)
	return &Parameter{Kind: ParamTable, Schema: cols, Source: source}, nil
}

// NewMappingParameter builds a key-to-value parameter.
func NewMappingParameter(keyColumn string, source *DataSource) (*Parameter, error) {
	if source == nil {
		return nil, fmt.Errorf("mapping parameter requires a source")
	}
	return &Parameter{Kind: ParamMapping, KeyColumn: keyColumn, Source: source}, nil
}

// NewScalarParameter builds a scalar parameter with a declared type name.
func NewScalarParameter(value any, typ string) *Parameter {
	return &Parameter{Kind: ParamScalar, Value: value, Type: typ}
}

// Materialized reports whether the parameter already carries loaded data
// and needs no source resolution. Scalars are always materialized.
func (p *Parameter) Materialized() bool {
	switch p.Kind {
	case ParamTable:
		return p.Rows != nil
	case ParamMapping:
		return p.Map != nil
	case ParamScalar:
		return true
	default:
		panic(fmt.Sprintf("unhandled parameter kind %q", p.Kind))
	}
}

// withRows returns a copy of a table parameter carrying rows as its cached
// data. The receiver is not modified.
func (p *Parameter) withRows(rows [][]any) *Parameter {
	cp := *p
	cp.Rows = rows
	return &cp
}

// withMap returns a copy of a mapping parameter carrying m as its cached
// data. The receiver is not modified.
func (p *Parameter) withMap(m map[string]any) *Parameter {
	cp := *p
	cp.Map = m
	return &cp
}
