package ratings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTally(t *testing.T) {
	tests := []struct {
		name        string
		kinds       []string
		wantBoosts  int
		wantDampens int
	}{
		{"пусто", nil, 0, 0},
		{"только бусты", []string{"boost", "boost", "boost"}, 3, 0},
		{"смешанные", []string{"boost", "dampen", "boost", "dampen", "dampen"}, 2, 3},
		{"неизвестные виды игнорируются", []string{"boost", "like", ""}, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			boosts, dampens := Tally(tt.kinds)
			assert.Equal(t, tt.wantBoosts, boosts)
			assert.Equal(t, tt.wantDampens, dampens)
		})
	}
}
