package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// ErrSchemaViolation indicates the config file does not match the schema.
var ErrSchemaViolation = errors.New("config file does not match schema")

//go:embed schema.json
var schemaJSON []byte

// ValidateFile checks the raw YAML file at path against the embedded schema.
// Unknown keys are rejected so typos do not silently fall back to defaults.
func ValidateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	return ValidateDocument(data)
}

// ValidateDocument checks a YAML document against the embedded schema.
// An empty document is valid.
func ValidateDocument(data []byte) error {
	var document map[string]any

	err := yaml.Unmarshal(data, &document)
	if err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	if document == nil {
		return nil
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewGoLoader(document),
	)
	if err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		problems = append(problems, fmt.Sprintf("%s: %s", verr.Field(), verr.Description()))
	}

	return fmt.Errorf("%w: %s", ErrSchemaViolation, strings.Join(problems, "; "))
}
