package codec

import (
	"context"
	"fmt"
	"time"

	"github.com/vk/optspec/internal/ctxlog"
	"github.com/vk/optspec/internal/spec"
)

// knownSections is the set of top-level keys the grammar recognizes. Any
// other key is tolerated with a warning for forward compatibility.
var knownSections = map[string]struct{}{
	"template":   {},
	"indexes":    {},
	"parameters": {},
	"options":    {},
	"overrides":  {},
}

func decodeSpecification(ctx context.Context, root map[string]any) (*spec.Specification, error) {
	logger := ctxlog.FromContext(ctx)
	for key := range root {
		if _, ok := knownSections[key]; !ok {
			logger.Warn("Ignoring unknown top-level configuration key.", "key", key)
		}
	}

	template, _ := root["template"].(string)
	if template == "" {
		return nil, newConfigError(KindMissingField, "template", "a non-empty template id is required")
	}

	indexes := map[string]*spec.Index{}
	if raw, ok := root["indexes"]; ok {
		section, err := asObject(raw, "indexes")
		if err != nil {
			return nil, err
		}
		for name, rawIx := range section {
			ix, err := DecodeIndex(rawIx, "indexes."+name)
			if err != nil {
				return nil, err
			}
			indexes[name] = ix
		}
	}

	params := map[string]*spec.Parameter{}
	if raw, ok := root["parameters"]; ok {
		section, err := asObject(raw, "parameters")
		if err != nil {
			return nil, err
		}
		for name, rawParam := range section {
			p, err := decodeParameter(rawParam, "parameters."+name)
			if err != nil {
				return nil, err
			}
			params[name] = p
		}
	}

	options := map[string]any{}
	if raw, ok := root["options"]; ok {
		section, err := asObject(raw, "options")
		if err != nil {
			return nil, err
		}
		options = section
	}

	overrides := map[spec.Phase][]spec.Override{}
	if raw, ok := root["overrides"]; ok {
		section, err := asObject(raw, "overrides")
		if err != nil {
			return nil, err
		}
		for phase, rawList := range section {
			switch spec.Phase(phase) {
			case spec.PhaseConstraints, spec.PhaseObjective:
			default:
				return nil, newConfigError(KindInvalidValue, "overrides."+phase,
					"override phase must be %q or %q", spec.PhaseConstraints, spec.PhaseObjective)
			}
			list, err := DecodeOverrides(rawList, "overrides."+phase)
			if err != nil {
				return nil, err
			}
			overrides[spec.Phase(phase)] = list
		}
	}

	s, err := spec.New(template, indexes, params, options, overrides)
	if err != nil {
		return nil, &ConfigError{Kind: KindInvalidValue, Path: "", Detail: err.Error(), Err: err}
	}
	return s, nil
}

// DecodeIndex decodes one index object. It is exported for the patch
// engine, which replaces whole indexes by the same grammar.
func DecodeIndex(raw any, path string) (*spec.Index, error) {
	obj, err := asObject(raw, path)
	if err != nil {
		return nil, err
	}
	typ, _ := obj["type"].(string)
	switch spec.IndexKind(typ) {
	case spec.IndexDateRange:
		start, err := decodeDate(obj, "start", path)
		if err != nil {
			return nil, err
		}
		end, err := decodeDate(obj, "end", path)
		if err != nil {
			return nil, err
		}
		ix, err := spec.NewDateRangeIndex(start, end)
		if err != nil {
			return nil, &ConfigError{Kind: KindInvalidValue, Path: path, Detail: err.Error(), Err: err}
		}
		return ix, nil
	case spec.IndexList:
		values, err := asStringSlice(obj["values"], path+".values")
		if err != nil {
			return nil, err
		}
		ix, err := spec.NewListIndex(values)
		if err != nil {
			return nil, &ConfigError{Kind: KindInvalidValue, Path: path, Detail: err.Error(), Err: err}
		}
		return ix, nil
	default:
		return nil, newConfigError(KindUnknownVariant, path, "unknown index type %q", typ)
	}
}

func decodeDate(obj map[string]any, field, path string) (time.Time, error) {
	s, _ := obj[field].(string)
	if s == "" {
		return time.Time{}, newConfigError(KindMissingField, path+"."+field, "a %s date is required", spec.DateLayout)
	}
	d, err := time.Parse(spec.DateLayout, s)
	if err != nil {
		return time.Time{}, &ConfigError{Kind: KindInvalidValue, Path: path + "." + field,
			Detail: fmt.Sprintf("%q is not a %s date", s, spec.DateLayout), Err: err}
	}
	return d, nil
}

func decodeParameter(raw any, path string) (*spec.Parameter, error) {
	obj, err := asObject(raw, path)
	if err != nil {
		return nil, err
	}
	typ, _ := obj["type"].(string)
	switch spec.ParameterKind(typ) {
	case spec.ParamTable:
		schema, err := asStringSlice(obj["columns"], path+".columns")
		if err != nil {
			return nil, err
		}
		src, err := decodeSource(obj["source"], path+".source")
		if err != nil {
			return nil, err
		}
		p, err := spec.NewTableParameter(schema, src)
		if err != nil {
			return nil, &ConfigError{Kind: KindInvalidValue, Path: path, Detail: err.Error(), Err: err}
		}
		if rawData, ok := obj["data"]; ok {
			rows, err := asRows(rawData, path+".data")
			if err != nil {
				return nil, err
			}
			p.Rows = rows
		}
		return p, nil
	case spec.ParamMapping:
		keyColumn, _ := obj["key"].(string)
		src, err := decodeSource(obj["source"], path+".source")
		if err != nil {
			return nil, err
		}
		p, err := spec.NewMappingParameter(keyColumn, src)
		if err != nil {
			return nil, &ConfigError{Kind: KindInvalidValue, Path: path, Detail: err.Error(), Err: err}
		}
		if rawData, ok := obj["data"]; ok {
			m, err := asObject(rawData, path+".data")
			if err != nil {
				return nil, err
			}
			p.Map = m
		}
		return p, nil
	case spec.ParamScalar:
		value, ok := obj["value"]
		if !ok {
			return nil, newConfigError(KindMissingField, path+".value", "scalar parameter requires a value")
		}
		declared, _ := obj["value_type"].(string)
		return spec.NewScalarParameter(value, declared), nil
	default:
		return nil, newConfigError(KindUnknownVariant, path, "unknown parameter type %q", typ)
	}
}

func decodeSource(raw any, path string) (*spec.DataSource, error) {
	obj, err := asObject(raw, path)
	if err != nil {
		return nil, err
	}
	typ, _ := obj["type"].(string)

	wrap := func(src *spec.DataSource, err error) (*spec.DataSource, error) {
		if err != nil {
			return nil, &ConfigError{Kind: KindInvalidValue, Path: path, Detail: err.Error(), Err: err}
		}
		return src, nil
	}

	switch spec.SourceKind(typ) {
	case spec.SourceCSV:
		p, _ := obj["path"].(string)
		var options map[string]any
		if rawOpts, ok := obj["options"]; ok {
			options, err = asObject(rawOpts, path+".options")
			if err != nil {
				return nil, err
			}
		}
		return wrap(spec.NewCSVSource(p, options))
	case spec.SourceJSON:
		p, _ := obj["path"].(string)
		var keyPath []string
		if rawKey, ok := obj["key_path"]; ok {
			keyPath, err = asStringSlice(rawKey, path+".key_path")
			if err != nil {
				return nil, err
			}
		}
		return wrap(spec.NewJSONSource(p, keyPath))
	case spec.SourceAPI:
		url, _ := obj["url"].(string)
		headers := map[string]string{}
		if rawHeaders, ok := obj["headers"]; ok {
			hs, err := asObject(rawHeaders, path+".headers")
			if err != nil {
				return nil, err
			}
			for k, v := range hs {
				s, ok := v.(string)
				if !ok {
					return nil, newConfigError(KindInvalidValue, path+".headers."+k, "header values must be strings")
				}
				headers[k] = s
			}
		}
		transform, _ := obj["transform"].(string)
		return wrap(spec.NewAPISource(url, headers, transform))
	case spec.SourceCall:
		callable, _ := obj["callable"].(string)
		var args map[string]any
		if rawArgs, ok := obj["args"]; ok {
			args, err = asObject(rawArgs, path+".args")
			if err != nil {
				return nil, err
			}
		}
		return wrap(spec.NewCallSource(callable, args))
	case spec.SourceLiteral:
		return spec.NewLiteralSource(obj["data"]), nil
	default:
		return nil, newConfigError(KindUnknownVariant, path, "unknown source type %q", typ)
	}
}

// DecodeOverrides decodes one override-phase list. It is exported for the
// patch engine, which replaces whole phases by the same grammar.
func DecodeOverrides(raw any, path string) ([]spec.Override, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, newConfigError(KindInvalidValue, path, "override phase must hold an ordered list")
	}
	out := make([]spec.Override, 0, len(list))
	for i, el := range list {
		elPath := fmt.Sprintf("%s[%d]", path, i)
		obj, err := asObject(el, elPath)
		if err != nil {
			return nil, err
		}
		target, _ := obj["target"].(string)
		if target == "" {
			return nil, newConfigError(KindMissingField, elPath+".target", "an override requires a target capability id")
		}
		name, _ := obj["name"].(string)
		var args map[string]any
		if rawArgs, ok := obj["args"]; ok {
			args, err = asObject(rawArgs, elPath+".args")
			if err != nil {
				return nil, err
			}
		}
		out = append(out, spec.Override{Name: name, Target: target, Args: args})
	}
	return out, nil
}

// --- shape helpers ---

func asObject(raw any, path string) (map[string]any, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, newConfigError(KindInvalidValue, path, "expected an object, got %T", raw)
	}
	return obj, nil
}

func asStringSlice(raw any, path string) ([]string, error) {
	switch vs := raw.(type) {
	case []string:
		return vs, nil
	case []any:
		out := make([]string, 0, len(vs))
		for i, el := range vs {
			s, ok := el.(string)
			if !ok {
				return nil, newConfigError(KindInvalidValue, fmt.Sprintf("%s[%d]", path, i),
					"expected a string, got %T", el)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, newConfigError(KindInvalidValue, path, "expected a list of strings, got %T", raw)
	}
}

func asRows(raw any, path string) ([][]any, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, newConfigError(KindInvalidValue, path, "expected a list of rows, got %T", raw)
	}
	rows := make([][]any, 0, len(list))
	for i, el := range list {
		row, ok := el.([]any)
		if !ok {
			return nil, newConfigError(KindInvalidValue, fmt.Sprintf("%s[%d]", path, i),
				"expected a row list, got %T", el)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
