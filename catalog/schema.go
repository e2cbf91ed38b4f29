package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const datasetSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "dataset",
  "type": "object",
  "required": ["name", "sources"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "description": {"type": "string"},
    "sources": {"type": "array", "items": {"$ref": "#/definitions/volumeSource"}},
    "views": {"type": "array", "items": {"$ref": "#/definitions/view"}}
  },
  "definitions": {
    "numbers": {"type": "array", "items": {"type": "number"}},
    "transform": {
      "type": "object",
      "required": ["axes", "units", "scale"],
      "properties": {
        "axes": {"type": "array", "items": {"type": "string"}},
        "units": {"type": "array", "items": {"type": "string"}},
        "scale": {"$ref": "#/definitions/numbers"},
        "translate": {"$ref": "#/definitions/numbers"}
      }
    },
    "displaySettings": {
      "type": "object",
      "required": ["contrastLimits"],
      "properties": {
        "contrastLimits": {
          "type": "object",
          "required": ["min", "max", "start", "end"],
          "properties": {
            "min": {"type": "number"},
            "max": {"type": "number"},
            "start": {"type": "number"},
            "end": {"type": "number"}
          }
        },
        "color": {"type": "string", "pattern": "^(#[0-9a-fA-F]{6}|[a-zA-Z]+)$"},
        "invertLUT": {"type": "boolean"}
      }
    },
    "meshSource": {
      "type": "object",
      "required": ["url", "format", "transform"],
      "properties": {
        "name": {"type": "string"},
        "url": {"type": "string", "minLength": 1},
        "format": {"type": "string"},
        "transform": {"$ref": "#/definitions/transform"},
        "ids": {"type": "array", "items": {"type": "integer", "minimum": 0, "maximum": 9007199254740991}}
      }
    },
    "volumeSource": {
      "type": "object",
      "required": ["name", "url", "format", "transform", "sampleType", "displaySettings"],
      "properties": {
        "name": {"type": "string", "minLength": 1},
        "description": {"type": "string"},
        "url": {"type": "string", "minLength": 1},
        "format": {"type": "string"},
        "transform": {"$ref": "#/definitions/transform"},
        "sampleType": {"type": "string"},
        "contentType": {"type": "string"},
        "displaySettings": {"$ref": "#/definitions/displaySettings"},
        "subsources": {"type": "array", "items": {"$ref": "#/definitions/meshSource"}}
      }
    },
    "view": {
      "type": "object",
      "required": ["name", "sourceNames"],
      "properties": {
        "name": {"type": "string"},
        "description": {"type": "string"},
        "sourceNames": {"type": "array", "items": {"type": "string"}},
        "position": {"type": "array", "items": {"type": "number"}, "minItems": 3, "maxItems": 3},
        "scale": {"type": "number", "exclusiveMinimum": 0},
        "orientation": {"type": "array", "items": {"type": "number"}, "minItems": 4, "maxItems": 4}
      }
    }
  }
}`

// datasetSchema is compiled once; a bad constant is a programming error.
var datasetSchema = jsonschema.MustCompileString("dataset.json", datasetSchemaJSON)

// SchemaJSON returns the JSON Schema every dataset description must satisfy.
func SchemaJSON() string {
	return datasetSchemaJSON
}

// validateSchema checks JSON-encoded dataset bytes against the dataset schema.
func validateSchema(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("dataset is not valid JSON: %v", err)
	}
	if err := datasetSchema.Validate(v); err != nil {
		return fmt.Errorf("dataset fails schema validation: %w", err)
	}
	return nil
}
