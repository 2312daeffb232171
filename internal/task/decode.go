package task

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kaptinlin/jsonrepair"
	"gopkg.in/yaml.v3"
)

var (
	// ErrEmptyTask is returned when the input carries no task at all.
	ErrEmptyTask = errors.New("no task data provided")
	// ErrMalformedTask is returned when the input cannot be decoded as a task.
	ErrMalformedTask = errors.New("malformed task")
)

// Decode parses a JSON task object, applying the documented defaults.
func Decode(data []byte) (Task, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || isNull(trimmed) {
		return Task{}, ErrEmptyTask
	}
	if trimmed[0] != '{' {
		return Task{}, fmt.Errorf("%w: expected a JSON object", ErrMalformedTask)
	}

	var t Task
	if err := json.Unmarshal(trimmed, &t); err != nil {
		return Task{}, fmt.Errorf("%w: %v", ErrMalformedTask, err)
	}
	if t.IsEmpty() {
		return Task{}, ErrEmptyTask
	}
	return t, nil
}

// DecodeYAML parses a task written as YAML. The document is normalized to
// JSON first so both encodings share the same field semantics.
func DecodeYAML(data []byte) (Task, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Task{}, fmt.Errorf("%w: %v", ErrMalformedTask, err)
	}
	if doc == nil {
		return Task{}, ErrEmptyTask
	}
	if _, ok := doc.(map[string]any); !ok {
		return Task{}, fmt.Errorf("%w: expected a mapping at the document root", ErrMalformedTask)
	}

	encoded, err := json.Marshal(doc)
	if err != nil {
		return Task{}, fmt.Errorf("%w: %v", ErrMalformedTask, err)
	}
	return Decode(encoded)
}

// DecodeLenient repairs common JSON damage (trailing commas, single quotes,
// unquoted keys, truncation) before decoding.
func DecodeLenient(data []byte) (Task, error) {
	t, err := Decode(data)
	if err == nil || errors.Is(err, ErrEmptyTask) {
		return t, err
	}

	repaired, repairErr := jsonrepair.JSONRepair(string(data))
	if repairErr != nil {
		return Task{}, fmt.Errorf("%w: repair failed: %v", ErrMalformedTask, repairErr)
	}
	return Decode([]byte(repaired))
}
