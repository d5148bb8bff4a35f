package prompts

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultSchema(t *testing.T) {
	schema := DefaultSchema()

	var parsed map[string]any
	if err := json.Unmarshal([]byte(schema), &parsed); err != nil {
		t.Fatalf("default schema is not valid JSON: %v", err)
	}
	if _, ok := parsed["line_items"]; !ok {
		t.Error("default schema missing line_items")
	}
}

func TestLoadSchema(t *testing.T) {
	t.Run("empty path uses embedded default", func(t *testing.T) {
		schema, err := LoadSchema("")
		if err != nil {
			t.Fatalf("LoadSchema() error = %v", err)
		}
		if schema != DefaultSchema() {
			t.Error("expected embedded default schema")
		}
	})

	t.Run("custom schema file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "schema.json")
		custom := `{"patient_name": "string", "date_of_birth": "string"}`
		if err := os.WriteFile(path, []byte(custom), 0o644); err != nil {
			t.Fatal(err)
		}

		schema, err := LoadSchema(path)
		if err != nil {
			t.Fatalf("LoadSchema() error = %v", err)
		}
		if schema != custom {
			t.Errorf("schema = %q, want %q", schema, custom)
		}
	})

	t.Run("malformed schema fails fast", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "schema.json")
		if err := os.WriteFile(path, []byte(`{"unterminated": `), 0o644); err != nil {
			t.Fatal(err)
		}

		if _, err := LoadSchema(path); err == nil {
			t.Error("expected error for malformed schema file")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadSchema(filepath.Join(t.TempDir(), "nope.json")); err == nil {
			t.Error("expected error for missing schema file")
		}
	})
}

func TestBuild(t *testing.T) {
	schema := `{"field": "string"}`

	prompt, err := Build(schema)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if prompt.System == "" {
		t.Error("expected non-empty system instruction")
	}
	if strings.Contains(prompt.System, "{{") {
		t.Error("system instruction contains unrendered template syntax")
	}
	if !strings.Contains(prompt.User, schema) {
		t.Error("user instruction does not embed the schema literally")
	}
	if !strings.Contains(prompt.User, "stacked top to bottom") {
		t.Error("user instruction missing composite layout note")
	}
}
