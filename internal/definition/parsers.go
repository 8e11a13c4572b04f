package definition

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	maxDefinitionSize = 10 * 1024 * 1024 // 10MB limit to prevent memory exhaustion
)

// readFile reads a file with sane limits to prevent attacks.
func readFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if info.Size() > maxDefinitionSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, info.Size(), maxDefinitionSize)
	}

	return io.ReadAll(io.LimitReader(file, maxDefinitionSize))
}

// unmarshal decodes data using path to choose JSON or YAML.
// For JSON, runs a case-insensitive key collision check before decoding.
func unmarshal(path string, data []byte, v interface{}) error {
	if isJSONFile(path) {
		if err := detectCaseInsensitiveKeyCollisions(data); err != nil {
			return fmt.Errorf("case-insensitive key collision detected: %w", err)
		}
		return json.Unmarshal(data, v)
	}
	if isYAMLFile(path) {
		return yaml.Unmarshal(data, v)
	}
	return fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// detectCaseInsensitiveKeyCollisions checks if the JSON data contains keys
// that differ only by letter case. encoding/json matches keys case-insensitively,
// so "Deadline" and "deadline" in one object would silently shadow each other.
func detectCaseInsensitiveKeyCollisions(data []byte) error {
	var res interface{}
	// If this generic decode fails (e.g., syntax error), skip collision check and
	// let the main unmarshal path report a proper JSON parse error.
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&res); err != nil {
		return nil
	}
	return checkCaseInsensitiveKeysRecursive(res, "")
}

func checkCaseInsensitiveKeysRecursive(obj interface{}, path string) error {
	switch v := obj.(type) {
	case map[string]interface{}:
		lowerToOriginal := make(map[string]string, len(v))
		for key, value := range v {
			lower := strings.ToLower(key)
			if first, exists := lowerToOriginal[lower]; exists {
				return fmt.Errorf("case-insensitive key collision at '%s': '%s' and '%s'", joinKey(path, lower), key, first)
			}
			lowerToOriginal[lower] = key
			if err := checkCaseInsensitiveKeysRecursive(value, joinKey(path, key)); err != nil {
				return err
			}
		}

	case []interface{}:
		for i, item := range v {
			if err := checkCaseInsensitiveKeysRecursive(item, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
	}

	return nil
}

func joinKey(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
