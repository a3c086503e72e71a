package engine

import (
	"sort"
	"strings"

	"github.com/colonyops/spotcheck/internal/core/task"
)

// dedupeSimilarity is the cutoff above which two detections in the same
// cycle are treated as duplicates of one real-world item.
const dedupeSimilarity = 0.8

// Keyword lists for priority and duration derivation, applied once at
// task creation.
var (
	highPriorityTerms = []string{
		"spill", "broken", "dirty", "stain", "mess", "urgent",
	}
	mediumPriorityTerms = []string{
		"organize", "clean", "wipe", "vacuum",
	}

	quickActionTerms = []string{
		"pick up", "put away", "close", "turn off",
	}
	longActionTerms = []string{
		"vacuum", "mop", "deep clean", "scrub",
	}
	mediumActionTerms = []string{
		"wipe", "clean", "organize", "fold",
	}
)

// Priority derives a task priority from description keywords.
func Priority(description string) int {
	desc := strings.ToLower(description)
	if containsAny(desc, highPriorityTerms) {
		return task.PriorityHigh
	}
	if containsAny(desc, mediumPriorityTerms) {
		return task.PriorityMedium
	}
	return task.PriorityLow
}

// EstimateDuration estimates task effort in minutes from description
// keywords. Quick actions beat long ones when both appear, matching how
// detections usually lead with the action verb.
func EstimateDuration(description string) int {
	desc := strings.ToLower(description)
	switch {
	case containsAny(desc, quickActionTerms):
		return 2
	case containsAny(desc, longActionTerms):
		return 15
	case containsAny(desc, mediumActionTerms):
		return 5
	default:
		return 3
	}
}

// Preprocess prepares a cycle's raw detections for matching: validates
// every detection, drops near-duplicates keeping the higher-confidence
// one, and caps the accepted list at maxTasks (0 = unlimited), highest
// confidence first. Any validation failure aborts the whole cycle.
//
// Output order is deterministic: descending confidence, then lexical
// description order.
func Preprocess(detections []task.Detection, maxTasks int) ([]task.Detection, error) {
	for _, d := range detections {
		if err := d.Validate(); err != nil {
			return nil, err
		}
	}

	sorted := make([]task.Detection, len(detections))
	copy(sorted, detections)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Confidence != sorted[j].Confidence {
			return sorted[i].Confidence > sorted[j].Confidence
		}
		return sorted[i].Description < sorted[j].Description
	})

	// Higher-confidence detections come first, so keeping the first of
	// any duplicate pair keeps the stronger signal.
	var accepted []task.Detection
	for _, d := range sorted {
		dup := false
		for _, kept := range accepted {
			if Similarity(d.Description, kept.Description) > dedupeSimilarity {
				dup = true
				break
			}
		}
		if !dup {
			accepted = append(accepted, d)
		}
	}

	if maxTasks > 0 && len(accepted) > maxTasks {
		accepted = accepted[:maxTasks]
	}

	return accepted, nil
}
