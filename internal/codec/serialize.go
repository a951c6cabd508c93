package codec

import (
	"fmt"

	"github.com/vk/optspec/internal/spec"
)

// Serialize renders a Specification back into the structured form Parse
// accepts. Only sections with content are emitted so a minimal
// specification serializes to a minimal document.
func Serialize(s *spec.Specification) map[string]any {
	root := map[string]any{"template": s.Template}

	if len(s.Indexes) > 0 {
		indexes := make(map[string]any, len(s.Indexes))
		for name, ix := range s.Indexes {
			indexes[name] = serializeIndex(ix)
		}
		root["indexes"] = indexes
	}

	if len(s.Parameters) > 0 {
		params := make(map[string]any, len(s.Parameters))
		for name, p := range s.Parameters {
			params[name] = serializeParameter(p)
		}
		root["parameters"] = params
	}

	if len(s.Options) > 0 {
		options := make(map[string]any, len(s.Options))
		for k, v := range s.Options {
			options[k] = v
		}
		root["options"] = options
	}

	if len(s.Overrides) > 0 {
		overrides := make(map[string]any, len(s.Overrides))
		for phase, list := range s.Overrides {
			serialized := make([]any, 0, len(list))
			for _, ov := range list {
				obj := map[string]any{"target": ov.Target}
				if ov.Name != "" {
					obj["name"] = ov.Name
				}
				if len(ov.Args) > 0 {
					obj["args"] = ov.Args
				}
				serialized = append(serialized, obj)
			}
			overrides[string(phase)] = serialized
		}
		root["overrides"] = overrides
	}

	return root
}

func serializeIndex(ix *spec.Index) map[string]any {
	switch ix.Kind {
	case spec.IndexDateRange:
		return map[string]any{
			"type":  string(spec.IndexDateRange),
			"start": ix.Start.Format(spec.DateLayout),
			"end":   ix.End.Format(spec.DateLayout),
		}
	case spec.IndexList:
		values := make([]any, len(ix.Values))
		for i, v := range ix.Values {
			values[i] = v
		}
		return map[string]any{
			"type":   string(spec.IndexList),
			"values": values,
		}
	default:
		panic(fmt.Sprintf("unhandled index kind %q", ix.Kind))
	}
}

func serializeParameter(p *spec.Parameter) map[string]any {
	switch p.Kind {
	case spec.ParamTable:
		columns := make([]any, len(p.Schema))
		for i, c := range p.Schema {
			columns[i] = c
		}
		obj := map[string]any{
			"type":    string(spec.ParamTable),
			"columns": columns,
			"source":  serializeSource(p.Source),
		}
		if p.Rows != nil {
			rows := make([]any, len(p.Rows))
			for i, row := range p.Rows {
				rows[i] = append([]any(nil), row...)
			}
			obj["data"] = rows
		}
		return obj
	case spec.ParamMapping:
		obj := map[string]any{
			"type":   string(spec.ParamMapping),
			"source": serializeSource(p.Source),
		}
		if p.KeyColumn != "" {
			obj["key"] = p.KeyColumn
		}
		if p.Map != nil {
			data := make(map[string]any, len(p.Map))
			for k, v := range p.Map {
				data[k] = v
			}
			obj["data"] = data
		}
		return obj
	case spec.ParamScalar:
		obj := map[string]any{
			"type":  string(spec.ParamScalar),
			"value": p.Value,
		}
		if p.Type != "" {
			obj["value_type"] = p.Type
		}
		return obj
	default:
		panic(fmt.Sprintf("unhandled parameter kind %q", p.Kind))
	}
}

func serializeSource(src *spec.DataSource) map[string]any {
	switch src.Kind {
	case spec.SourceCSV:
		obj := map[string]any{"type": string(spec.SourceCSV), "path": src.Path}
		if len(src.Options) > 0 {
			obj["options"] = src.Options
		}
		return obj
	case spec.SourceJSON:
		obj := map[string]any{"type": string(spec.SourceJSON), "path": src.Path}
		if len(src.KeyPath) > 0 {
			keyPath := make([]any, len(src.KeyPath))
			for i, k := range src.KeyPath {
				keyPath[i] = k
			}
			obj["key_path"] = keyPath
		}
		return obj
	case spec.SourceAPI:
		obj := map[string]any{"type": string(spec.SourceAPI), "url": src.URL}
		if len(src.Headers) > 0 {
			headers := make(map[string]any, len(src.Headers))
			for k, v := range src.Headers {
				headers[k] = v
			}
			obj["headers"] = headers
		}
		if src.Transform != "" {
			obj["transform"] = src.Transform
		}
		return obj
	case spec.SourceCall:
		obj := map[string]any{"type": string(spec.SourceCall), "callable": src.Callable}
		if len(src.Args) > 0 {
			obj["args"] = src.Args
		}
		return obj
	case spec.SourceLiteral:
		return map[string]any{"type": string(spec.SourceLiteral), "data": src.Data}
	default:
		panic(fmt.Sprintf("unhandled source kind %q", src.Kind))
	}
}
