// Package zone defines the monitored zone domain model. A zone is a
// physical area with its own independent task list, thresholds and
// reconciliation schedule.
package zone

import (
	"regexp"
	"strings"
	"time"
)

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify normalizes a display name into a zone name: lowercase,
// non-alphanumerics collapsed to single hyphens, trimmed.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugPattern.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Zone represents one monitored physical area.
type Zone struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	// CameraEntity identifies the image source for the vision
	// collaborator. Spotcheck never reads it; it is carried for the
	// external integration.
	CameraEntity string `json:"camera_entity,omitempty"`
	Enabled      bool   `json:"enabled"`

	// UpdateFrequency is the reconciliation interval for the zone.
	UpdateFrequency time.Duration `json:"update_frequency"`

	// MaxTasksPerAnalysis caps accepted detections per cycle; 0 means
	// unlimited.
	MaxTasksPerAnalysis int `json:"max_tasks_per_analysis"`

	CreatedAt time.Time `json:"created_at"`
}
