package codec

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vk/optspec/internal/spec"
)

// Format names a supported configuration syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatHCL  Format = "hcl"
)

// ParseFormat normalizes a user-supplied format string.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	case "hcl":
		return FormatHCL, nil
	default:
		return "", fmt.Errorf("unsupported config format %q (yaml, json, hcl)", s)
	}
}

// DetectFormat picks a format from a file extension, defaulting to YAML.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".hcl":
		return FormatHCL
	default:
		return FormatYAML
	}
}

// Parse decodes a configuration document into a Specification.
func Parse(ctx context.Context, data []byte, format Format) (*spec.Specification, error) {
	var root map[string]any
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &root); err != nil {
			return nil, &ConfigError{Kind: KindSyntax, Path: "", Detail: "invalid yaml", Err: err}
		}
		normalizeTree(root)
	case FormatJSON:
		if err := json.Unmarshal(data, &root); err != nil {
			return nil, &ConfigError{Kind: KindSyntax, Path: "", Detail: "invalid json", Err: err}
		}
	case FormatHCL:
		var err error
		root, err = parseHCL(data)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
	if root == nil {
		return nil, newConfigError(KindMissingField, "", "configuration document is empty")
	}
	return decodeSpecification(ctx, root)
}

// normalizeTree rewrites YAML-specific value types in place so the shared
// decoder sees the same shapes the JSON frontend produces. Unquoted dates
// resolve to time.Time under yaml.v3; the grammar treats them as strings.
func normalizeTree(node map[string]any) {
	for k, v := range node {
		node[k] = normalizeValue(v)
	}
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		normalizeTree(t)
		return t
	case []any:
		for i, el := range t {
			t[i] = normalizeValue(el)
		}
		return t
	case time.Time:
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
			return t.Format(spec.DateLayout)
		}
		return t.Format(time.RFC3339)
	default:
		return v
	}
}
