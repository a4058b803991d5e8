package outfmt

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"
)

// toGeneric round trips v through JSON so that json tags name the keys in
// every encoding.
func toGeneric(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// WriteYAML writes v as a YAML document.
func WriteYAML(w io.Writer, v any) error {
	generic, err := toGeneric(v)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return err
	}
	return enc.Close()
}

// WriteJSONL writes one compact JSON value per line. Lists, bare or wrapped
// as {"items": [...]}, are written one element per line.
func WriteJSONL(w io.Writer, v any) error {
	generic, err := toGeneric(v)
	if err != nil {
		return err
	}
	lines := []any{generic}
	switch t := generic.(type) {
	case []any:
		lines = t
	case map[string]any:
		if items, ok := t["items"].([]any); ok {
			lines = items
		}
	}
	enc := json.NewEncoder(w)
	for _, line := range lines {
		if err := enc.Encode(line); err != nil {
			return err
		}
	}
	return nil
}
