// Package envfile reads and writes the env-style settings file that
// `formscan provision` produces and the extraction client consumes.
//
// The file format is newline-delimited `KEY = VALUE` pairs. Writes are
// line-preserving: updating a key rewrites only that key's line, comments
// and unrelated keys are left byte-for-byte intact, and new keys are
// appended at the end.
package envfile

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

// ErrKeyNotFound is returned when a requested key is not present in the file.
var ErrKeyNotFound = errors.New("key not found in settings file")

// keyLinePattern matches an assignment line and captures the key name.
// Leading `export` is tolerated, matching what godotenv accepts.
var keyLinePattern = regexp.MustCompile(`^\s*(?:export\s+)?([A-Za-z_][A-Za-z0-9_.]*)\s*=`)

// Read parses the settings file into a key/value map.
// A missing file is not an error; it yields an empty map.
func Read(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}
	return values, nil
}

// Get returns the value for a single key.
func Get(path, key string) (string, error) {
	values, err := Read(path)
	if err != nil {
		return "", err
	}
	value, ok := values[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	return value, nil
}

// Set upserts the given key/value pairs into the settings file.
// Existing assignment lines for a key are rewritten in place; every other
// line is preserved unchanged. Keys not present in the file are appended
// in sorted order. The file is created if it does not exist.
func Set(path string, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}

	var lines []string
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to read settings file %s: %w", path, err)
		}
	} else {
		lines = strings.Split(string(data), "\n")
		// Drop the trailing empty element from a final newline so we can
		// re-join without doubling it.
		if len(lines) > 0 && lines[len(lines)-1] == "" {
			lines = lines[:len(lines)-1]
		}
	}

	seen := make(map[string]bool, len(values))
	for i, line := range lines {
		match := keyLinePattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		key := match[1]
		value, ok := values[key]
		if !ok {
			continue
		}
		lines[i] = formatLine(key, value)
		seen[key] = true
	}

	// Append new keys in sorted order for deterministic output.
	var missing []string
	for key := range values {
		if !seen[key] {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	for _, key := range missing {
		lines = append(lines, formatLine(key, values[key]))
	}

	out := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(out), 0o600); err != nil {
		return fmt.Errorf("failed to write settings file %s: %w", path, err)
	}
	return nil
}

func formatLine(key, value string) string {
	if needsQuoting(value) {
		return fmt.Sprintf("%s = %q", key, value)
	}
	return fmt.Sprintf("%s = %s", key, value)
}

// needsQuoting reports whether a bare value would not round-trip through
// the env reader: `#` starts an inline comment, quotes confuse the parser,
// and surrounding whitespace is trimmed.
func needsQuoting(value string) bool {
	if strings.ContainsAny(value, "#\"'\n") {
		return true
	}
	return value != strings.TrimSpace(value)
}
