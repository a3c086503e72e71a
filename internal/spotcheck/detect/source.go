// Package detect defines the boundary to the vision collaborator: a
// Source produces the current cycle's detections for a zone. The
// built-in FileInbox source reads JSON drop files, so the scheduler
// runs without any camera integration.
package detect

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/colonyops/spotcheck/internal/core/logging"
	"github.com/colonyops/spotcheck/internal/core/task"
	"github.com/colonyops/spotcheck/internal/core/zone"
)

// Batch is one cycle's worth of vision output for a zone.
type Batch struct {
	Detections []task.Detection `json:"detections"`

	// CleanlinessScore is optional vision metadata; -1 when absent.
	CleanlinessScore float64 `json:"cleanliness_score"`
}

// Source produces detections for a zone. ok reports whether a batch was
// available this cycle; a source with nothing to offer returns
// (Batch{}, false, nil) and the scheduler skips the pass.
type Source interface {
	Collect(ctx context.Context, z zone.Zone) (batch Batch, ok bool, err error)
}

// FileInbox reads one JSON drop file per zone from a directory. The
// file is named <zone-name>.json and is consumed (removed) once parsed,
// so each drop triggers exactly one reconciliation pass.
type FileInbox struct {
	dir string
	log zerolog.Logger
}

// NewFileInbox creates a file inbox source rooted at dir.
func NewFileInbox(dir string, log zerolog.Logger) *FileInbox {
	return &FileInbox{dir: dir, log: logging.Component(log, "inbox")}
}

var _ Source = (*FileInbox)(nil)

// Collect reads and consumes the zone's drop file if present.
func (f *FileInbox) Collect(_ context.Context, z zone.Zone) (Batch, bool, error) {
	path := filepath.Join(f.dir, z.Name+".json")

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Batch{}, false, nil
	}
	if err != nil {
		return Batch{}, false, fmt.Errorf("read inbox file: %w", err)
	}

	var payload struct {
		Detections       []task.Detection `json:"detections"`
		CleanlinessScore *float64         `json:"cleanliness_score"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		// A malformed drop is consumed anyway so it cannot wedge the
		// zone's schedule.
		f.removeDrop(path)
		return Batch{}, false, fmt.Errorf("parse inbox file %s: %w", path, err)
	}

	f.removeDrop(path)

	batch := Batch{Detections: payload.Detections, CleanlinessScore: -1}
	if payload.CleanlinessScore != nil {
		batch.CleanlinessScore = *payload.CleanlinessScore
	}

	return batch, true, nil
}

func (f *FileInbox) removeDrop(path string) {
	if err := os.Remove(path); err != nil {
		f.log.Warn().Err(err).Str("path", path).Msg("failed to remove inbox drop")
	}
}
