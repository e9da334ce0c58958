package draft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/models"
)

func matched(name string, pos models.Position, rank int, id string) models.MatchResult {
	p := models.RankedPlayer{Name: name, Position: pos, Rank: rank}
	if id == "" {
		return models.Unmatched(p)
	}
	r := models.RemotePlayer{ID: id, Name: name, Position: pos}
	return models.MatchResult{Ranked: p, Remote: &r, Confidence: 1, Method: models.MethodExact}
}

func sampleMatches() []models.MatchResult {
	return []models.MatchResult{
		matched("Christian McCaffrey", models.PositionRB, 1, "10"),
		matched("Justin Jefferson", models.PositionWR, 2, "1"),
		matched("Ja'Marr Chase", models.PositionWR, 3, "2"),
		matched("Bijan Robinson", models.PositionRB, 4, "11"),
		matched("Unknown Rookie", models.PositionRB, 5, ""),
		matched("Breece Hall", models.PositionRB, 6, "12"),
		matched("Travis Kelce", models.PositionTE, 7, "20"),
		matched("Saquon Barkley", models.PositionRB, 8, "13"),
	}
}

func TestApplyPicksAvailability(t *testing.T) {
	s := NewState().ApplyPicks([]models.PickEvent{{RemotePlayerID: "1", PickNumber: 1}})
	assert.False(t, s.IsAvailable("1"))
	assert.True(t, s.IsAvailable("2"))
	assert.True(t, s.IsAvailable(""), "unmatched players are always available")
}

func TestApplyPicksIsIdempotent(t *testing.T) {
	events := []models.PickEvent{
		{RemotePlayerID: "1", PickNumber: 1, DraftedBy: "team-a"},
		{RemotePlayerID: "2", PickNumber: 2, DraftedBy: "team-b"},
		{RemotePlayerID: "3", PickNumber: 3, DraftedBy: "team-c"},
	}
	once := NewState().ApplyPicks(events)
	twice := once.ApplyPicks(events)

	assert.Equal(t, 3, once.Len())
	assert.Equal(t, once.DraftedIDs(), twice.DraftedIDs())
	assert.Equal(t, once.Picks(), twice.Picks())
}

func TestApplyPicksOverlappingHistory(t *testing.T) {
	first := []models.PickEvent{{RemotePlayerID: "1", PickNumber: 1}, {RemotePlayerID: "2", PickNumber: 2}}
	second := []models.PickEvent{{RemotePlayerID: "1", PickNumber: 1}, {RemotePlayerID: "2", PickNumber: 2}, {RemotePlayerID: "3", PickNumber: 3}}

	s := NewState().ApplyPicks(first).ApplyPicks(second)
	assert.Equal(t, []string{"1", "2", "3"}, s.DraftedIDs())

	// out of order re-delivery keeps the earliest pick
	s = s.ApplyPicks([]models.PickEvent{{RemotePlayerID: "1", PickNumber: 9}})
	ev, ok := s.Pick("1")
	require.True(t, ok)
	assert.Equal(t, 1, ev.PickNumber)
}

func TestApplyPicksDoesNotMutateReceiver(t *testing.T) {
	base := NewState()
	next := base.ApplyPicks([]models.PickEvent{{RemotePlayerID: "1", PickNumber: 1}})
	assert.Equal(t, 0, base.Len())
	assert.Equal(t, 1, next.Len())

	var zero State
	assert.True(t, zero.IsAvailable("1"))
	assert.Equal(t, 1, zero.ApplyPicks([]models.PickEvent{{RemotePlayerID: "1"}}).Len())
}

func TestApplyPicksSkipsEmptyIDs(t *testing.T) {
	s := NewState().ApplyPicks([]models.PickEvent{{RemotePlayerID: "", PickNumber: 1}})
	assert.Equal(t, 0, s.Len())
}

func TestUnknownTargetsAreRecordedButInert(t *testing.T) {
	catalog := map[string]models.RemotePlayer{"1": {ID: "1", Name: "Justin Jefferson"}}
	s := NewState().ApplyPicks([]models.PickEvent{
		{RemotePlayerID: "1", PickNumber: 1},
		{RemotePlayerID: "999", PickNumber: 2},
	})

	unknown := s.UnknownTargets(catalog)
	require.Len(t, unknown, 1)
	assert.Equal(t, "999", unknown[0].RemotePlayerID)
	assert.False(t, s.IsAvailable("999"))

	available := s.AvailablePlayers(sampleMatches())
	assert.Len(t, available, len(sampleMatches())-1)
}

func TestAvailablePlayersPreservesOrder(t *testing.T) {
	matches := sampleMatches()
	s := NewState().ApplyPicks([]models.PickEvent{
		{RemotePlayerID: "2", PickNumber: 1},
		{RemotePlayerID: "11", PickNumber: 2},
	})

	got := s.AvailablePlayers(matches)
	names := make([]string, 0, len(got))
	for _, p := range got {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{
		"Christian McCaffrey", "Justin Jefferson", "Unknown Rookie",
		"Breece Hall", "Travis Kelce", "Saquon Barkley",
	}, names)

	for i := 1; i < len(got); i++ {
		assert.Less(t, got[i-1].Rank, got[i].Rank)
	}
}

func TestTopByPosition(t *testing.T) {
	matches := sampleMatches()
	s := NewState().ApplyPicks([]models.PickEvent{{RemotePlayerID: "10", PickNumber: 1}})

	top := s.TopByPosition(matches, models.PositionRB, 3)
	require.Len(t, top, 3)
	for _, p := range top {
		assert.Equal(t, models.PositionRB, p.Position)
	}
	assert.Equal(t, "Bijan Robinson", top[0].Name)
	assert.Equal(t, "Unknown Rookie", top[1].Name)
	assert.Equal(t, "Breece Hall", top[2].Name)

	assert.Len(t, s.TopByPosition(matches, models.PositionTE, 3), 1)
	assert.Empty(t, s.TopByPosition(matches, models.PositionK, 3))
	assert.Empty(t, s.TopByPosition(matches, models.PositionRB, 0))
}

func TestTopByPositionSortsByRank(t *testing.T) {
	shuffled := []models.MatchResult{
		matched("C", models.PositionWR, 30, "c"),
		matched("A", models.PositionWR, 10, "a"),
		matched("B", models.PositionWR, 20, "b"),
	}
	top := NewState().TopByPosition(shuffled, models.PositionWR, 2)
	require.Len(t, top, 2)
	assert.Equal(t, 10, top[0].Rank)
	assert.Equal(t, 20, top[1].Rank)
}

func TestTopOverall(t *testing.T) {
	s := NewState().ApplyPicks([]models.PickEvent{{RemotePlayerID: "10", PickNumber: 1}})
	top := s.TopOverall(sampleMatches(), 2)
	require.Len(t, top, 2)
	assert.Equal(t, "Justin Jefferson", top[0].Name)
	assert.Equal(t, "Ja'Marr Chase", top[1].Name)
}

func TestDraftedPlayers(t *testing.T) {
	s := NewState().ApplyPicks([]models.PickEvent{
		{RemotePlayerID: "12", PickNumber: 1, DraftedBy: "u1"},
		{RemotePlayerID: "1", PickNumber: 2, DraftedBy: "u2"},
	})
	drafted := s.DraftedPlayers(sampleMatches())
	require.Len(t, drafted, 2)
	assert.Equal(t, "Justin Jefferson", drafted[0].Player.Name)
	assert.Equal(t, "u2", drafted[0].Pick.DraftedBy)
	assert.Equal(t, "Breece Hall", drafted[1].Player.Name)
}

func TestUnmatchedDrafted(t *testing.T) {
	catalog := map[string]models.RemotePlayer{
		"1":  {ID: "1", Name: "Justin Jefferson"},
		"50": {ID: "50", Name: "Marquise Brown"},
	}
	s := NewState().ApplyPicks([]models.PickEvent{
		{RemotePlayerID: "1", PickNumber: 1},
		{RemotePlayerID: "50", PickNumber: 2},
		{RemotePlayerID: "999", PickNumber: 3},
	})
	out := s.UnmatchedDrafted(sampleMatches(), catalog)
	require.Len(t, out, 1)
	assert.Equal(t, "Marquise Brown", out[0].Name)
}
