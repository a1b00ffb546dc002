package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// marshalFiles converts a file list to JSON TEXT for storage.
// HTML escaping is disabled so paths are stored as written.
func marshalFiles(files []string) (string, error) {
	if files == nil {
		files = []string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(files); err != nil {
		return "", fmt.Errorf("marshal files: %w", err)
	}
	// Encoder appends a newline.
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// unmarshalFiles parses a stored file list.
func unmarshalFiles(s string) ([]string, error) {
	var files []string
	if err := json.Unmarshal([]byte(s), &files); err != nil {
		return nil, fmt.Errorf("unmarshal files: %w", err)
	}
	if files == nil {
		files = []string{}
	}
	return files, nil
}
