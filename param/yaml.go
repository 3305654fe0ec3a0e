package param

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Parameter file errors.
var (
	// ErrEmptyFile is returned when a parameter file contains no document.
	ErrEmptyFile = errors.New("parameter file is empty")
)

// ParseYAML parses a YAML parameter file into a flat parameter list. Nested
// mappings become dot-namespaced names:
//
//	motors:
//	  left:
//	    gain: 0.5
//
// yields one parameter named "motors.left.gain". Scalars are normalized into
// the variant domain; a value outside it (sequences, nested anchors resolving
// to non-scalars) fails the whole parse. Parameters are returned in sorted
// name order.
func ParseYAML(data []byte) ([]Parameter, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse parameter file: %w", err)
	}
	if doc == nil {
		return nil, ErrEmptyFile
	}

	var params []Parameter
	if err := flatten("", doc, &params); err != nil {
		return nil, err
	}
	sort.Slice(params, func(i, j int) bool { return params[i].Name < params[j].Name })
	return params, nil
}

// LoadFile reads and parses a YAML parameter file from disk.
func LoadFile(path string) ([]Parameter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read parameter file: %w", err)
	}
	return ParseYAML(data)
}

func flatten(prefix string, node map[string]any, out *[]Parameter) error {
	for key, value := range node {
		name := key
		if prefix != "" {
			name = prefix + Separator + key
		}
		switch v := value.(type) {
		case map[string]any:
			if err := flatten(name, v, out); err != nil {
				return err
			}
		default:
			p := NewParameter(name, v)
			if err := p.Validate(); err != nil {
				return err
			}
			*out = append(*out, p)
		}
	}
	return nil
}
