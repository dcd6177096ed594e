package taskfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// ParseRecords reads task records from r. Input may be a single JSON array or
// a stream of JSON objects, one after another.
func ParseRecords(r io.Reader) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read task input: %w", err)
	}
	return decodeJSON(data)
}

// ParseFile reads task records from a .json, .yaml or .yml file.
func ParseFile(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data, err = coerceToJSONBytes(path, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	records, err := decodeJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

func decodeJSON(data []byte) ([]Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var records []Record
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("failed to decode task json: %w", err)
		}
		return records, nil
	}

	var records []Record
	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	for {
		var rec Record
		if err := decoder.Decode(&rec); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("failed to decode task json: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}
