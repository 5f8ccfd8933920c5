package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// ReadToken reads an API token from a JSON file holding either
// {"token": "..."} or a bare JSON string.
func ReadToken(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read token file: %w", err)
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return "", NewInputError(path, 0, "", "token file is not valid JSON: %v", err)
	}

	var token string
	switch v := raw.(type) {
	case string:
		token = v
	case map[string]any:
		s, ok := v["token"].(string)
		if !ok {
			return "", NewInputError(path, 0, "token", "object has no string 'token' key")
		}
		token = s
	default:
		return "", NewInputError(path, 0, "", "token JSON must be a string or an object with a 'token' key")
	}

	if token = strings.TrimSpace(token); token == "" {
		return "", NewInputError(path, 0, "token", "empty token")
	}
	return token, nil
}
