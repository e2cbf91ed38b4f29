package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a dataset description object.
type Format string

const (
	JSONFormat Format = "json"
	YAMLFormat Format = "yaml"
	TOMLFormat Format = "toml"
)

// FormatForKey returns the encoding implied by an object key's extension, or false
// if the key isn't a dataset description.
func FormatForKey(key string) (Format, bool) {
	switch strings.ToLower(path.Ext(key)) {
	case ".json":
		return JSONFormat, true
	case ".yaml", ".yml":
		return YAMLFormat, true
	case ".toml":
		return TOMLFormat, true
	default:
		return "", false
	}
}

// toJSON converts a YAML or TOML description to JSON so every format goes through
// the same schema validation.
func toJSON(format Format, data []byte) ([]byte, error) {
	var generic interface{}
	switch format {
	case JSONFormat:
		return data, nil
	case YAMLFormat:
		if err := yaml.Unmarshal(data, &generic); err != nil {
			return nil, fmt.Errorf("bad YAML: %v", err)
		}
	case TOMLFormat:
		var m map[string]interface{}
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("bad TOML: %v", err)
		}
		generic = m
	default:
		return nil, fmt.Errorf("unsupported dataset format %q", format)
	}
	out, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("can't convert %s dataset to JSON: %v", format, err)
	}
	return out, nil
}

// Decode parses and validates one dataset description.
func Decode(format Format, data []byte) (*Dataset, error) {
	jsonData, err := toJSON(format, data)
	if err != nil {
		return nil, err
	}
	if err := validateSchema(jsonData); err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(jsonData))
	var ds Dataset
	if err := dec.Decode(&ds); err != nil {
		return nil, fmt.Errorf("can't decode dataset: %v", err)
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return &ds, nil
}
