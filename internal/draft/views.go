package draft

import (
	"sort"

	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/models"
)

// AvailableMatches keeps the matches whose player is unmatched or undrafted.
// The output is a subsequence of matches, so rank order is preserved.
func (s State) AvailableMatches(matches []models.MatchResult) []models.MatchResult {
	out := make([]models.MatchResult, 0, len(matches))
	for _, m := range matches {
		if s.IsAvailable(m.RemoteID()) {
			out = append(out, m)
		}
	}
	return out
}

// AvailablePlayers is AvailableMatches projected onto the ranked players
func (s State) AvailablePlayers(matches []models.MatchResult) []models.RankedPlayer {
	available := s.AvailableMatches(matches)
	players := make([]models.RankedPlayer, 0, len(available))
	for _, m := range available {
		players = append(players, m.Ranked)
	}
	return players
}

// TopByPosition returns at most n available players at pos, best rank first
func (s State) TopByPosition(matches []models.MatchResult, pos models.Position, n int) []models.RankedPlayer {
	if n <= 0 {
		return []models.RankedPlayer{}
	}
	var players []models.RankedPlayer
	for _, p := range s.AvailablePlayers(matches) {
		if p.Position == pos {
			players = append(players, p)
		}
	}
	return firstByRank(players, n)
}

// TopOverall returns at most n available players of any position, best rank first
func (s State) TopOverall(matches []models.MatchResult, n int) []models.RankedPlayer {
	if n <= 0 {
		return []models.RankedPlayer{}
	}
	return firstByRank(s.AvailablePlayers(matches), n)
}

// DraftedPlayers returns the matched players that have been drafted, best rank first
func (s State) DraftedPlayers(matches []models.MatchResult) []models.DraftedPlayer {
	var drafted []models.DraftedPlayer
	for _, m := range matches {
		if ev, ok := s.Pick(m.RemoteID()); ok {
			drafted = append(drafted, models.DraftedPlayer{Player: m.Ranked, Pick: ev})
		}
	}
	sort.SliceStable(drafted, func(i, j int) bool {
		return drafted[i].Player.Rank < drafted[j].Player.Rank
	})
	return drafted
}

// UnmatchedDrafted returns drafted catalog players that no match references,
// in pick order. These are picks the rankings could not be reconciled with.
func (s State) UnmatchedDrafted(matches []models.MatchResult, catalog map[string]models.RemotePlayer) []models.RemotePlayer {
	referenced := make(map[string]bool, len(matches))
	for _, m := range matches {
		if id := m.RemoteID(); id != "" {
			referenced[id] = true
		}
	}

	var out []models.RemotePlayer
	for _, ev := range s.Picks() {
		if referenced[ev.RemotePlayerID] {
			continue
		}
		if p, ok := catalog[ev.RemotePlayerID]; ok {
			out = append(out, p)
		}
	}
	return out
}

func firstByRank(players []models.RankedPlayer, n int) []models.RankedPlayer {
	sorted := make([]models.RankedPlayer, len(players))
	copy(sorted, players)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Rank < sorted[j].Rank
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
