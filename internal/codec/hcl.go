package codec

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// parseHCL evaluates every top-level attribute of an HCL document and
// lowers the resulting cty values to native Go, producing the same root
// object shape the YAML and JSON frontends produce.
func parseHCL(data []byte) (map[string]any, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, &ConfigError{Kind: KindSyntax, Path: "", Detail: "invalid hcl", Err: diags}
	}

	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, &ConfigError{Kind: KindSyntax, Path: "", Detail: "invalid hcl attributes", Err: diags}
	}

	root := make(map[string]any, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, &ConfigError{Kind: KindInvalidValue, Path: name,
				Detail: "could not evaluate attribute", Err: diags}
		}
		native, err := ctyToNative(val)
		if err != nil {
			return nil, &ConfigError{Kind: KindInvalidValue, Path: name,
				Detail: "could not lower attribute value", Err: err}
		}
		root[name] = native
	}
	return root, nil
}

// ctyToNative recursively converts a cty.Value to its most natural Go
// counterpart: string, float64, bool, []any, or map[string]any.
func ctyToNative(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil

	case ty == cty.Number:
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, fmt.Errorf("could not convert cty.Number to float64: %w", err)
		}
		return f, nil

	case ty == cty.Bool:
		return v.True(), nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		slice := make([]any, 0)
		it := v.ElementIterator()
		for it.Next() {
			_, el := it.Element()
			native, err := ctyToNative(el)
			if err != nil {
				return nil, err
			}
			slice = append(slice, native)
		}
		return slice, nil

	case ty.IsObjectType() || ty.IsMapType():
		obj := make(map[string]any)
		it := v.ElementIterator()
		for it.Next() {
			key, el := it.Element()
			keyStr := key.AsString()
			native, err := ctyToNative(el)
			if err != nil {
				return nil, fmt.Errorf("in attribute %q: %w", keyStr, err)
			}
			obj[keyStr] = native
		}
		return obj, nil

	default:
		return nil, fmt.Errorf("unsupported cty type %s", ty.FriendlyName())
	}
}
