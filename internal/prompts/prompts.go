// Package prompts builds the fixed extraction instructions sent with each
// request. The target schema is an external input: callers may point at
// their own schema file, with an embedded default used otherwise.
package prompts

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/jackzampolin/formscan/internal/providers"
)

//go:embed templates/*.tmpl templates/schema.json
var embedded embed.FS

const (
	systemTemplateFile = "templates/system.tmpl"
	userTemplateFile   = "templates/user.tmpl"
	defaultSchemaFile  = "templates/schema.json"
)

// DefaultSchema returns the embedded example extraction schema.
func DefaultSchema() string {
	data, err := embedded.ReadFile(defaultSchemaFile)
	if err != nil {
		// Embedded file, cannot fail at runtime.
		panic(fmt.Sprintf("embedded schema missing: %v", err))
	}
	return string(data)
}

// LoadSchema returns the extraction schema to embed in the prompt.
// If path is empty the embedded default is used. The schema is compiled
// up front so a malformed file fails here, not inside a paid API call.
func LoadSchema(path string) (string, error) {
	if path == "" {
		return DefaultSchema(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read schema file %s: %w", path, err)
	}

	if err := ValidateSchema(string(data)); err != nil {
		return "", fmt.Errorf("invalid schema file %s: %w", path, err)
	}

	return string(data), nil
}

// ValidateSchema checks that the schema input is well-formed. Both JSON
// Schema documents and literal example shapes are accepted; anything that
// does not parse as a JSON document is rejected.
func ValidateSchema(schemaJSON string) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", strings.NewReader(schemaJSON)); err != nil {
		return fmt.Errorf("schema does not parse: %w", err)
	}
	if _, err := compiler.Compile("schema.json"); err != nil {
		return fmt.Errorf("schema does not compile: %w", err)
	}
	return nil
}

// Build renders the system and user instructions around the given schema.
func Build(schemaJSON string) (providers.Prompt, error) {
	system, err := embedded.ReadFile(systemTemplateFile)
	if err != nil {
		return providers.Prompt{}, fmt.Errorf("failed to read system template: %w", err)
	}

	userTmpl, err := template.ParseFS(embedded, userTemplateFile)
	if err != nil {
		return providers.Prompt{}, fmt.Errorf("failed to parse user template: %w", err)
	}

	var user bytes.Buffer
	if err := userTmpl.Execute(&user, struct{ Schema string }{Schema: schemaJSON}); err != nil {
		return providers.Prompt{}, fmt.Errorf("failed to render user template: %w", err)
	}

	return providers.Prompt{
		System: strings.TrimSpace(string(system)),
		User:   strings.TrimSpace(user.String()),
	}, nil
}
