package spec

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

const schemaURL = "https://burnrate.dev/schemas/model_v1.json"

//go:embed schema.json
var schemaJSON []byte

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func Load(path string) (Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Spec{}, fmt.Errorf("read model: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (Spec, error) {
	if err := ValidateSchema(data); err != nil {
		return Spec{}, err
	}
	var s Spec
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Spec{}, fmt.Errorf("parse model: %w", err)
	}
	return s, nil
}

// ValidateSchema checks the raw document shape before any semantic checks.
func ValidateSchema(data []byte) error {
	schema, err := loadSchema()
	if err != nil {
		return err
	}
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse model: %w", err)
	}
	if doc == nil {
		return errors.New("model document is empty")
	}
	if err := schema.Validate(doc); err != nil {
		var validationErr *jsonschema.ValidationError
		if errors.As(err, &validationErr) {
			return fmt.Errorf("schema: %s", strings.Join(schemaMessages(validationErr), "; "))
		}
		return fmt.Errorf("schema: %w", err)
	}
	return nil
}

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
		if err != nil {
			schemaErr = fmt.Errorf("load schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, doc); err != nil {
			schemaErr = fmt.Errorf("load schema: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}

func schemaMessages(err *jsonschema.ValidationError) []string {
	if len(err.Causes) == 0 {
		path := strings.Join(err.InstanceLocation, ".")
		if path == "" {
			path = "(root)"
		}
		return []string{fmt.Sprintf("%s: %s", path, err.Error())}
	}
	var out []string
	for _, cause := range err.Causes {
		out = append(out, schemaMessages(cause)...)
	}
	return out
}
