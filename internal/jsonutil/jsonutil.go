package jsonutil

import (
	"encoding/json"
	"fmt"
)

// Dump renders v as pretty JSON with 2-space indent and sorted keys, for
// audit bodies and console reports. The round trip through a generic value
// lets encoding/json order every object's keys. Dates held as time.Time
// come out as ISO-8601 strings. A marshal failure indicates an
// unsupported value type, which is a programming defect and is returned
// as a hard error.
func Dump(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal: %w", err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return "", fmt.Errorf("remarshal: %w", err)
	}
	out, err := json.MarshalIndent(generic, "", "  ")
	if err != nil {
		return "", fmt.Errorf("indent: %w", err)
	}
	return string(out), nil
}
