package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		min  float64
		max  float64
	}{
		{
			name: "identical strings score 1.0",
			a:    "pick up shirt from floor",
			b:    "pick up shirt from floor",
			min:  1.0,
			max:  1.0,
		},
		{
			name: "empty left side scores 0.0",
			a:    "",
			b:    "anything",
			min:  0.0,
			max:  0.0,
		},
		{
			name: "empty right side scores 0.0",
			a:    "anything",
			b:    "",
			min:  0.0,
			max:  0.0,
		},
		{
			name: "both empty scores 0.0",
			a:    "",
			b:    "",
			min:  0.0,
			max:  0.0,
		},
		{
			name: "rephrased task stays above matching threshold",
			a:    "pick up the red shirt from the floor",
			b:    "pick up shirt from floor",
			min:  0.75,
			max:  1.0,
		},
		{
			name: "unrelated tasks score low",
			a:    "wipe kitchen counter",
			b:    "fold laundry on the bed",
			min:  0.0,
			max:  0.4,
		},
		{
			name: "case insensitive",
			a:    "Wipe Kitchen Counter",
			b:    "wipe kitchen counter",
			min:  1.0,
			max:  1.0,
		},
		{
			name: "stopword-only strings fall back to sequence ratio",
			a:    "the the the",
			b:    "the the the",
			min:  1.0,
			max:  1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.a, tt.b)
			assert.GreaterOrEqual(t, got, tt.min)
			assert.LessOrEqual(t, got, tt.max)
		})
	}
}

func TestSimilarity_Bounds(t *testing.T) {
	inputs := []string{
		"", "a", "pick up shirt", "wipe down the counter near the sink",
		"组织 unicode ümlauts", "   ", "123 456",
	}

	for _, a := range inputs {
		for _, b := range inputs {
			got := Similarity(a, b)
			require.GreaterOrEqual(t, got, 0.0, "similarity(%q, %q)", a, b)
			require.LessOrEqual(t, got, 1.0, "similarity(%q, %q)", a, b)
		}
	}
}

func TestSimilarity_Symmetric(t *testing.T) {
	a := "pick up the red shirt from the floor"
	b := "put away clean dishes"

	assert.Equal(t, Similarity(a, b), Similarity(b, a))
}

func TestSimilarity_Deterministic(t *testing.T) {
	a := "organize books on the shelf"
	b := "sort the books on shelves"

	first := Similarity(a, b)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, Similarity(a, b))
	}
}
