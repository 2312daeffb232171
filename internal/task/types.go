package task

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const (
	// DefaultName is reported when a task arrives without a name.
	DefaultName = "Unnamed Task"
	// DefaultActionType is reported when an action arrives without a type.
	DefaultActionType = "unknown"
)

// RiskTier is the coarse danger classification of a task.
type RiskTier string

const (
	RiskGreen  RiskTier = "green"
	RiskYellow RiskTier = "yellow"
	RiskRed    RiskTier = "red"
)

// ActionStatus is the outcome of a single action run.
type ActionStatus string

const (
	ActionSuccess ActionStatus = "success"
	ActionFailure ActionStatus = "failure"
)

// ReportStatus is the outcome of processing a whole task.
type ReportStatus string

const (
	ReportCompleted ReportStatus = "completed"
	ReportFailed    ReportStatus = "failed"
)

// Task is a unit of work submitted for risk classification and execution.
//
// Fields other than name, description and actions are kept verbatim in
// Metadata so they take part in risk scoring and survive re-serialization.
type Task struct {
	Name        string
	Description string
	Actions     []Action
	Metadata    map[string]json.RawMessage

	// number of top-level keys seen while decoding
	keys int
	// name was present and non-null in the decoded input
	hasName bool
}

// Action is an atomic unit of work within a task.
type Action struct {
	Type  string
	Data  json.RawMessage
	Extra map[string]json.RawMessage
}

// ActionResult records the outcome of one action.
type ActionResult struct {
	Action string       `json:"action"`
	Status ActionStatus `json:"status"`
	Result string       `json:"result"`
}

// Report is the terminal output of processing a task.
type Report struct {
	TaskName        string         `json:"task_name"`
	RiskLevel       RiskTier       `json:"risk_level"`
	ActionsExecuted int            `json:"actions_executed"`
	Results         []ActionResult `json:"results"`
	Status          ReportStatus   `json:"status"`
}

// DisplayName returns the task name, or the placeholder when no name was
// given. An explicit empty name is kept as is.
func (t Task) DisplayName() string {
	if t.Name == "" && !t.hasName {
		return DefaultName
	}
	return t.Name
}

// IsEmpty reports whether the task carries no fields at all.
func (t Task) IsEmpty() bool {
	return t.keys == 0 && t.Name == "" && t.Description == "" && t.Actions == nil && len(t.Metadata) == 0
}

// ActionType returns the action type or the placeholder when it is empty.
func (a Action) ActionType() string {
	if a.Type == "" {
		return DefaultActionType
	}
	return a.Type
}

// MarshalJSON writes the task with its metadata flattened back to the top level.
func (t Task) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(t.Metadata)+3)
	for key, value := range t.Metadata {
		out[key] = value
	}
	if t.Name != "" || t.hasName {
		out["name"] = t.Name
	}
	if t.Description != "" {
		out["description"] = t.Description
	}
	if t.Actions != nil {
		out["actions"] = t.Actions
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a task object, moving unknown fields into Metadata.
func (t *Task) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	decoded := Task{keys: len(raw)}
	if value, ok := raw["name"]; ok {
		if err := decodeOptionalString(value, &decoded.Name); err != nil {
			return fmt.Errorf("name: %w", err)
		}
		decoded.hasName = !isNull(value)
		delete(raw, "name")
	}
	if value, ok := raw["description"]; ok {
		if err := decodeOptionalString(value, &decoded.Description); err != nil {
			return fmt.Errorf("description: %w", err)
		}
		delete(raw, "description")
	}
	if value, ok := raw["actions"]; ok {
		if !isNull(value) {
			if err := json.Unmarshal(value, &decoded.Actions); err != nil {
				return fmt.Errorf("actions: %w", err)
			}
		}
		delete(raw, "actions")
	}
	if len(raw) > 0 {
		decoded.Metadata = raw
	}

	*t = decoded
	return nil
}

// MarshalJSON writes the action with its extra fields flattened back.
func (a Action) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(a.Extra)+2)
	for key, value := range a.Extra {
		out[key] = value
	}
	if a.Type != "" {
		out["type"] = a.Type
	}
	if len(a.Data) > 0 {
		out["data"] = a.Data
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes an action object, keeping data and unknown fields raw.
func (a *Action) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var decoded Action
	if value, ok := raw["type"]; ok {
		if err := decodeOptionalString(value, &decoded.Type); err != nil {
			return fmt.Errorf("type: %w", err)
		}
		delete(raw, "type")
	}
	if value, ok := raw["data"]; ok {
		decoded.Data = append(json.RawMessage(nil), value...)
		delete(raw, "data")
	}
	if len(raw) > 0 {
		decoded.Extra = raw
	}

	*a = decoded
	return nil
}

// StringData encodes s as an opaque action payload.
func StringData(s string) json.RawMessage {
	encoded, _ := json.Marshal(s)
	return encoded
}

func decodeOptionalString(raw json.RawMessage, dst *string) error {
	if isNull(raw) {
		*dst = ""
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
