package engine

import (
	"sort"

	"github.com/colonyops/spotcheck/internal/core/task"
)

// Assignment pairs one current detection with the open task it matched.
type Assignment struct {
	TaskID    string
	Detection task.Detection
	Score     float64
}

// MatchResult partitions a cycle's detections and the zone's open tasks
// after matching. Every detection lands in exactly one of New or
// Reinforced; every open task in Reinforced or UnmatchedOpen.
type MatchResult struct {
	New           []task.Detection
	Reinforced    []Assignment
	UnmatchedOpen []task.Task
}

// pair is one candidate (detection, open task) edge in the similarity
// matrix.
type pair struct {
	cur   int
	open  int
	score float64
}

// Match assigns current detections to open tasks by greedy
// maximum-weight bipartite matching: repeatedly take the globally
// highest-scoring pair at or above threshold, assign it, and remove
// both sides from further consideration. Neither side is ever assigned
// twice. Ties break on higher detection confidence, then lexical order
// of the detection description, the task description, and the task id,
// so repeated invocations of the same input produce identical output.
func Match(current []task.Detection, open []task.Task, threshold float64) MatchResult {
	pairs := make([]pair, 0, len(current)*len(open))
	for i, d := range current {
		for j, t := range open {
			score := Similarity(d.Description, t.Description)
			if score >= threshold {
				pairs = append(pairs, pair{cur: i, open: j, score: score})
			}
		}
	}

	sort.Slice(pairs, func(a, b int) bool {
		pa, pb := pairs[a], pairs[b]
		if pa.score != pb.score {
			return pa.score > pb.score
		}
		da, db := current[pa.cur], current[pb.cur]
		if da.Confidence != db.Confidence {
			return da.Confidence > db.Confidence
		}
		if da.Description != db.Description {
			return da.Description < db.Description
		}
		ta, tb := open[pa.open], open[pb.open]
		if ta.Description != tb.Description {
			return ta.Description < tb.Description
		}
		return ta.ID < tb.ID
	})

	usedCur := make([]bool, len(current))
	usedOpen := make([]bool, len(open))

	var reinforced []Assignment
	for _, p := range pairs {
		if usedCur[p.cur] || usedOpen[p.open] {
			continue
		}
		usedCur[p.cur] = true
		usedOpen[p.open] = true
		reinforced = append(reinforced, Assignment{
			TaskID:    open[p.open].ID,
			Detection: current[p.cur],
			Score:     p.score,
		})
	}

	result := MatchResult{Reinforced: reinforced}
	for i, d := range current {
		if !usedCur[i] {
			result.New = append(result.New, d)
		}
	}
	for j, t := range open {
		if !usedOpen[j] {
			result.UnmatchedOpen = append(result.UnmatchedOpen, t)
		}
	}

	return result
}
