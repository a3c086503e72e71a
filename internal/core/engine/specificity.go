package engine

import "strings"

// Term lists for the specificity score. Fixed and curated; matching is
// case-insensitive substring containment so multi-word phrases like
// "pick up" work.
var (
	actionVerbs = []string{
		"pick up", "put away", "wipe down", "organize", "fold",
		"vacuum", "dust", "clean", "wash", "sort",
	}

	objectNouns = []string{
		"clothes", "clothing", "shirt", "pants", "shoes", "socks",
		"dishes", "plates", "cups", "glasses", "bottles", "toys",
		"books", "papers", "magazines", "towels", "blankets",
		"pillows", "trash", "garbage", "boxes", "bags", "laundry",
	}

	locationNouns = []string{
		"floor", "counter", "countertop", "table", "desk", "shelf",
		"shelves", "bed", "couch", "sofa", "sink", "stove", "cabinet",
		"drawer", "closet", "corner", "chair", "dresser", "nightstand",
		"rug", "carpet", "windowsill",
	}
)

// Specificity rates how actionable and concrete a task description is,
// in [0, 1]. An action verb contributes 0.4, an object noun 0.3, a
// location noun 0.3. Vague descriptions score low and discount the
// confidence of tasks created from them.
func Specificity(description string) float64 {
	desc := strings.ToLower(description)

	score := 0.0
	if containsAny(desc, actionVerbs) {
		score += 0.4
	}
	if containsAny(desc, objectNouns) {
		score += 0.3
	}
	if containsAny(desc, locationNouns) {
		score += 0.3
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}
