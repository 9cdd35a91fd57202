// Package labels reads label documents and writes cloning reports.
//
// A label document lists the boxes drawn on one image:
//
//	image: invoice-001.png
//	relation: [[10, 10, 300, 120]]
//	static: [[12, 12, 80, 30]]
//	variable_one: [[90, 12, 200, 30]]
//	variable_many: [[12, 40, 300, 120]]
//
// JSON is accepted as well since it is a subset of YAML.
package labels

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/template-cloner/internal/cloner"
)

//go:embed schema.json
var documentSchema []byte

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(documentSchema)); err != nil {
		return nil, fmt.Errorf("failed to load label schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile label schema: %w", err)
	}
	return schema, nil
})

// Document is a labeled image.
type Document struct {
	Image         string `json:"image,omitempty" yaml:"image,omitempty"`
	cloner.Labels `yaml:",inline"`
}

// Parse decodes and validates a label document.
func Parse(data []byte) (*Document, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse label document: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("label document is empty")
	}

	// Round-trip through JSON so the schema sees plain JSON values.
	normalized, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize label document: %w", err)
	}
	var doc any
	if err := json.Unmarshal(normalized, &doc); err != nil {
		return nil, fmt.Errorf("failed to normalize label document: %w", err)
	}

	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("label document does not match schema: %w", err)
	}

	var d Document
	if err := json.Unmarshal(normalized, &d); err != nil {
		return nil, fmt.Errorf("invalid label document: %w", err)
	}
	return &d, nil
}

// Decode reads a label document from r.
func Decode(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read label document: %w", err)
	}
	return Parse(data)
}

// LoadFile reads a label document from path.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read label document: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Encode writes d as YAML.
func (d *Document) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("failed to encode label document: %w", err)
	}
	return enc.Close()
}
