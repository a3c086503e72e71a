package ignore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRule_Matches(t *testing.T) {
	tests := []struct {
		name        string
		rule        Rule
		description string
		want        bool
	}{
		{
			name:        "keyword whole word match",
			rule:        Rule{Type: TypeKeyword, Value: "cat", Enabled: true},
			description: "the cat is on the couch",
			want:        true,
		},
		{
			name:        "keyword does not match inside another word",
			rule:        Rule{Type: TypeKeyword, Value: "cat", Enabled: true},
			description: "catalog on the desk",
			want:        false,
		},
		{
			name:        "partial match allows substrings",
			rule:        Rule{Type: TypeKeyword, Value: "cat", Enabled: true, MatchPartial: true},
			description: "catalog on the desk",
			want:        true,
		},
		{
			name:        "object matching is case insensitive by default",
			rule:        Rule{Type: TypeObject, Value: "Dog Bed", Enabled: true},
			description: "move the dog bed to the corner",
			want:        true,
		},
		{
			name:        "case sensitive match respects case",
			rule:        Rule{Type: TypeObject, Value: "Dog Bed", Enabled: true, CaseSensitive: true},
			description: "move the dog bed to the corner",
			want:        false,
		},
		{
			name:        "area rule matches multi-word phrase",
			rule:        Rule{Type: TypeArea, Value: "top shelf", Enabled: true},
			description: "dust the top shelf of the bookcase",
			want:        true,
		},
		{
			name:        "pattern glob matches whole description",
			rule:        Rule{Type: TypePattern, Value: "*litter box*", Enabled: true},
			description: "clean the litter box in the corner",
			want:        true,
		},
		{
			name:        "pattern glob misses",
			rule:        Rule{Type: TypePattern, Value: "*litter box*", Enabled: true},
			description: "wipe kitchen counter",
			want:        false,
		},
		{
			name:        "disabled rule never matches",
			rule:        Rule{Type: TypeKeyword, Value: "cat", Enabled: false},
			description: "the cat is on the couch",
			want:        false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rule.Matches(tt.description))
		})
	}
}

func TestRule_Validate(t *testing.T) {
	t.Run("valid keyword rule", func(t *testing.T) {
		r := Rule{Type: TypeKeyword, Value: "cat"}
		require.NoError(t, r.Validate())
	})

	t.Run("unknown type rejected", func(t *testing.T) {
		r := Rule{Type: Type("regex"), Value: "cat"}
		require.Error(t, r.Validate())
	})

	t.Run("blank value rejected", func(t *testing.T) {
		r := Rule{Type: TypeKeyword, Value: "  "}
		require.Error(t, r.Validate())
	})

	t.Run("malformed glob rejected", func(t *testing.T) {
		r := Rule{Type: TypePattern, Value: "[unclosed"}
		require.ErrorIs(t, r.Validate(), ErrBadPattern)
	})

	t.Run("valid glob accepted", func(t *testing.T) {
		r := Rule{Type: TypePattern, Value: "*{litter,food} box*"}
		require.NoError(t, r.Validate())
	})
}
