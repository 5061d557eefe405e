package requests

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format selects the encoding of a definitions document
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown definitions file extension: %s", path)
	}
}

// Decode parses a list of node definitions.
func Decode(data []byte, format Format) ([]NodeDefinitionDTO, error) {
	var defs []NodeDefinitionDTO
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &defs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal definitions: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &defs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal definitions: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown definitions format: %q", format)
	}
	return defs, nil
}

// Encode is the inverse of [Decode].
func Encode(defs []NodeDefinitionDTO, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(defs, "", "  ")
	case FormatYAML:
		return yaml.Marshal(defs)
	default:
		return nil, fmt.Errorf("unknown definitions format: %q", format)
	}
}

// LoadFile reads and decodes a definitions file; the format follows the
// file extension.
func LoadFile(path string) ([]NodeDefinitionDTO, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data, format)
}
