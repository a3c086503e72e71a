// Package validate provides shared validation functions.
package validate

import (
	"fmt"
	"strings"

	"github.com/hay-kot/criterio"
)

// ZoneName validates a zone name is non-empty after trimming whitespace.
func ZoneName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

// ZoneNameField returns a criterio validator for zone names.
func ZoneNameField(field, name string) error {
	return criterio.Run(field, name, ZoneName)
}

// RecordID validates an identifier is non-empty lowercase alphanumeric,
// matching the format produced by randid.
func RecordID(id string) error {
	if id == "" {
		return fmt.Errorf("id is required")
	}
	for _, r := range id {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return fmt.Errorf("id must be lowercase alphanumeric")
		}
	}
	return nil
}

// RecordIDField returns a criterio validator for record ids.
func RecordIDField(field, id string) error {
	return criterio.Run(field, id, RecordID)
}

// Confidence validates a confidence value lies in [0, 1].
func Confidence(v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("confidence must be between 0 and 1, got %v", v)
	}
	return nil
}

// ConfidenceField returns a criterio validator for confidence values.
func ConfidenceField(field string, v float64) error {
	return criterio.Run(field, v, Confidence)
}

// Description validates a task description is non-empty after trimming.
func Description(desc string) error {
	if strings.TrimSpace(desc) == "" {
		return fmt.Errorf("description is required")
	}
	return nil
}

// DescriptionField returns a criterio validator for task descriptions.
func DescriptionField(field, desc string) error {
	return criterio.Run(field, desc, Description)
}
