// Package ignore defines per-zone detection suppression rules. Rules
// run against raw detection descriptions before matching; a detection
// that any enabled rule matches never reaches the engine.
package ignore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// Type classifies how a rule's value is matched against a description.
type Type string

const (
	// TypeObject matches an object term ("shirt", "dishes").
	TypeObject Type = "object"
	// TypeArea matches a location term ("windowsill", "top shelf").
	TypeArea Type = "area"
	// TypeKeyword matches any keyword.
	TypeKeyword Type = "keyword"
	// TypePattern matches a doublestar glob against the whole description.
	TypePattern Type = "pattern"
)

// IsValid reports whether the type is a known value.
func (t Type) IsValid() bool {
	switch t {
	case TypeObject, TypeArea, TypeKeyword, TypePattern:
		return true
	}
	return false
}

var (
	// ErrNotFound is returned when a rule does not exist.
	ErrNotFound = errors.New("ignore rule not found")
	// ErrBadPattern is returned when a pattern rule's glob is malformed.
	ErrBadPattern = errors.New("bad ignore pattern")
)

// Rule suppresses detections for one zone.
type Rule struct {
	ID     string `json:"id"`
	ZoneID string `json:"zone_id"`
	Type   Type   `json:"type"`
	Value  string `json:"value"`

	Enabled       bool `json:"enabled"`
	CaseSensitive bool `json:"case_sensitive"`
	// MatchPartial allows substring matching for non-pattern rules;
	// otherwise the value must appear as a whole word.
	MatchPartial bool `json:"match_partial"`

	// UsageCount increments every time the rule suppresses a detection.
	UsageCount int64     `json:"usage_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// Validate checks the rule is well formed. Pattern rules must compile.
func (r Rule) Validate() error {
	if !r.Type.IsValid() {
		return errors.New("invalid rule type")
	}
	if strings.TrimSpace(r.Value) == "" {
		return errors.New("rule value is required")
	}
	if r.Type == TypePattern {
		if !doublestar.ValidatePattern(r.Value) {
			return ErrBadPattern
		}
	}
	return nil
}

// Matches reports whether the rule suppresses the given description.
// Disabled rules never match.
func (r Rule) Matches(description string) bool {
	if !r.Enabled {
		return false
	}

	if r.Type == TypePattern {
		// Glob errors were rejected at Validate time; a failure here
		// means no match.
		ok, err := doublestar.Match(r.Value, description)
		return err == nil && ok
	}

	desc := description
	value := r.Value
	if !r.CaseSensitive {
		desc = strings.ToLower(desc)
		value = strings.ToLower(value)
	}

	if r.MatchPartial {
		return strings.Contains(desc, value)
	}
	return containsWord(desc, value)
}

// containsWord reports whether value appears in desc on word
// boundaries. Multi-word values are matched as a phrase.
func containsWord(desc, value string) bool {
	fields := strings.FieldsFunc(desc, func(r rune) bool {
		return !isWordRune(r)
	})

	valueFields := strings.Fields(value)
	if len(valueFields) == 0 {
		return false
	}

	for i := 0; i+len(valueFields) <= len(fields); i++ {
		match := true
		for j, vf := range valueFields {
			if fields[i+j] != vf {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func isWordRune(r rune) bool {
	return r == '\'' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}

// Store defines the interface for ignore rule persistence.
type Store interface {
	// Create persists a new rule. The store populates ID and CreatedAt
	// if not already set.
	Create(ctx context.Context, r *Rule) error

	// Get returns a rule by ID. Returns ErrNotFound if missing.
	Get(ctx context.Context, id string) (Rule, error)

	// List returns a zone's rules ordered by created_at ASC.
	List(ctx context.Context, zoneID string) ([]Rule, error)

	// ListEnabled returns a zone's enabled rules ordered by created_at ASC.
	ListEnabled(ctx context.Context, zoneID string) ([]Rule, error)

	// IncrementUsage bumps the rule's usage counter.
	IncrementUsage(ctx context.Context, id string) error

	// Delete removes a rule. Returns ErrNotFound if missing.
	Delete(ctx context.Context, id string) error
}
