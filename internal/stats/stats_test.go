package stats

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInningScore(t *testing.T) {
	tests := []struct {
		ip     float64
		weight float64
		want   float64
	}{
		{3.0, 3.0, 9.0},
		{3.1, 3.0, 10.0},
		{3.2, 3.0, 11.0},
		{0.1, 1.0, 1.0 / 3},
		{6.0, 1.0, 6.0},
		{7.2, 0, 0},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, InningScore(tt.ip, tt.weight), 1e-9, "ip=%v weight=%v", tt.ip, tt.weight)
	}
}

func TestInningScoreIsNotDecimalMultiplication(t *testing.T) {
	assert.NotEqual(t, 3.1*3.0, InningScore(3.1, 3.0))
}

func TestAddInnings(t *testing.T) {
	tests := []struct {
		a, b float64
		want float64
	}{
		{1.2, 1.2, 3.1},
		{1.1, 1.1, 2.2},
		{0.1, 0.2, 1.0},
		{6.0, 0.2, 6.2},
		{2.1, 3.0, 5.1},
		{0, 0, 0},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, AddInnings(tt.a, tt.b), 1e-9, "%v + %v", tt.a, tt.b)
	}
}

func TestAddInningsMatchesOutArithmetic(t *testing.T) {
	for a := uint(0); a < 30; a++ {
		for b := uint(0); b < 30; b++ {
			got := AddInnings(outsToInnings(a), outsToInnings(b))
			assert.Equal(t, a+b, inningsToOuts(got), "outs %d + %d", a, b)
		}
	}
}

func TestNormalizeInningsClampsMalformedFraction(t *testing.T) {
	got, ok := NormalizeInnings(4.5)
	assert.False(t, ok)
	assert.InDelta(t, 4.2, got, 1e-9)

	got, ok = NormalizeInnings(4.1)
	assert.True(t, ok)
	assert.InDelta(t, 4.1, got, 1e-9)
}

func TestRoleForPosition(t *testing.T) {
	assert.Equal(t, RolePitcher, RoleForPosition("SP"))
	assert.Equal(t, RolePitcher, RoleForPosition("rp"))
	assert.Equal(t, RoleBatter, RoleForPosition("P"))
	assert.Equal(t, RoleBatter, RoleForPosition("RF"))
	assert.Equal(t, RoleBatter, RoleForPosition(""))
}

func TestMergeDoublesCountsAndRenormalizesInnings(t *testing.T) {
	p := RawPlayer{
		Name:            "Blake Snell",
		PrimaryPosition: "SP",
		PitcherStats:    &PitcherStats{InningsPitched: 1.2, Wins: 1, Strikeouts: 4, Outs: 5},
	}

	merged := p.Merge(p)

	require.NotNil(t, merged.PitcherStats)
	assert.InDelta(t, 3.1, merged.PitcherStats.InningsPitched, 1e-9)
	assert.Equal(t, uint(2), merged.PitcherStats.Wins)
	assert.Equal(t, uint(8), merged.PitcherStats.Strikeouts)
	assert.Equal(t, uint(10), merged.PitcherStats.Outs)
	assert.Nil(t, merged.BatterStats)

	// the receiver is untouched
	assert.InDelta(t, 1.2, p.PitcherStats.InningsPitched, 1e-9)
}

func TestMergeAdoptsMissingBlock(t *testing.T) {
	a := RawPlayer{Name: "Shohei Ohtani", PrimaryPosition: "DH"}
	b := RawPlayer{Name: "Shohei Ohtani", PrimaryPosition: "DH", BatterStats: &BatterStats{HomeRuns: 2}}

	merged := a.Merge(b)
	require.NotNil(t, merged.BatterStats)
	assert.Equal(t, uint(2), merged.BatterStats.HomeRuns)

	b.BatterStats.HomeRuns = 5
	assert.Equal(t, uint(2), merged.BatterStats.HomeRuns)
}

func TestSanitize(t *testing.T) {
	players := []RawPlayer{
		{Name: "A", PitcherStats: &PitcherStats{InningsPitched: 2.7}},
		{Name: "B", PitcherStats: &PitcherStats{InningsPitched: 2.1}},
		{Name: "C", BatterStats: &BatterStats{}},
	}

	assert.Equal(t, 1, Sanitize(players, nil))
	assert.InDelta(t, 2.2, players[0].PitcherStats.InningsPitched, 1e-9)
	assert.InDelta(t, 2.1, players[1].PitcherStats.InningsPitched, 1e-9)
}

func TestRoleJSON(t *testing.T) {
	data, err := json.Marshal(RolePitcher)
	require.NoError(t, err)
	assert.Equal(t, `"Pitcher"`, string(data))

	var r Role
	require.NoError(t, json.Unmarshal([]byte(`"batter"`), &r))
	assert.Equal(t, RoleBatter, r)

	assert.Error(t, json.Unmarshal([]byte(`"catcher"`), &r))
}

func inningsToOuts(ip float64) uint {
	whole, thirds, _ := splitInnings(ip)
	return uint(whole)*3 + uint(thirds)
}

func outsToInnings(outs uint) float64 {
	return float64(outs/3) + float64(outs%3)/10
}
