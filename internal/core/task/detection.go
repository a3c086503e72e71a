package task

import (
	"fmt"

	"github.com/colonyops/spotcheck/internal/core/validate"
)

// Detection is one task description produced by the vision collaborator
// for the current cycle, with its detection confidence.
type Detection struct {
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
}

// Validate checks the detection is well formed. Violations wrap
// ErrInvalidInput so callers can abort the cycle with errors.Is.
func (d Detection) Validate() error {
	if err := validate.DescriptionField("description", d.Description); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	if err := validate.ConfidenceField("confidence", d.Confidence); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	return nil
}
