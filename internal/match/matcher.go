package match

import (
	"strings"

	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/models"
)

const (
	// DefaultThreshold is the minimum fuzzy score accepted as a match
	DefaultThreshold = 0.80
	// DefaultSearchThreshold is the looser score used for search-as-you-type
	DefaultSearchThreshold = 0.60
)

// Matcher reconciles ranked players against the remote catalog.
//
// Matching is position scoped: a candidate at a different position is never accepted.
// When several candidates tie (same exact name, or the same top fuzzy score) the one
// that appears first in the catalog slice wins. Callers that need reproducible results
// must therefore pass the catalog in a stable order; the Sleeper client sorts by id.
type Matcher struct {
	scorer          Scorer
	threshold       float64
	searchThreshold float64
	surnameFallback bool
}

// Option configures a Matcher
type Option func(*Matcher)

// WithScorer swaps the similarity function
func WithScorer(s Scorer) Option {
	return func(m *Matcher) {
		if s != nil {
			m.scorer = s
		}
	}
}

// WithThreshold sets the minimum accepted fuzzy score
func WithThreshold(t float64) Option {
	return func(m *Matcher) {
		if t > 0 && t <= 1 {
			m.threshold = t
		}
	}
}

// WithSearchThreshold sets the minimum score for Search hits
func WithSearchThreshold(t float64) Option {
	return func(m *Matcher) {
		if t > 0 && t <= 1 {
			m.searchThreshold = t
		}
	}
}

// WithSurnameFallback enables the last-name + team + position heuristic used for
// nicknames ("Hollywood Brown") when the fuzzy step fails
func WithSurnameFallback(enabled bool) Option {
	return func(m *Matcher) {
		m.surnameFallback = enabled
	}
}

// New creates a Matcher using TokenSortRatio and DefaultThreshold unless overridden
func New(opts ...Option) *Matcher {
	m := &Matcher{
		scorer:          TokenSortRatio,
		threshold:       DefaultThreshold,
		searchThreshold: DefaultSearchThreshold,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Threshold returns the fuzzy acceptance threshold
func (m *Matcher) Threshold() float64 {
	return m.threshold
}

// Match returns the single best MatchResult for p
func (m *Matcher) Match(p models.RankedPlayer, catalog []models.RemotePlayer) models.MatchResult {
	key := FoldName(p.Name)
	if key == "" || len(catalog) == 0 {
		return models.Unmatched(p)
	}

	// exact: first catalog entry with the same folded name and position
	for i := range catalog {
		c := catalog[i]
		if c.Position == p.Position && FoldName(c.Name) == key {
			return models.MatchResult{Ranked: p, Remote: &c, Confidence: 1, Method: models.MethodExact}
		}
	}

	best, score, ok := m.bestCandidate(p, catalog)
	if ok && score >= m.threshold {
		return models.MatchResult{Ranked: p, Remote: &best, Confidence: score, Method: models.MethodFuzzy}
	}

	if m.surnameFallback {
		// the heuristic carries no score of its own; report it at the acceptance floor
		if c, ok := surnameCandidate(p, catalog); ok {
			return models.MatchResult{Ranked: p, Remote: &c, Confidence: m.threshold, Method: models.MethodSurname}
		}
	}

	return models.Unmatched(p)
}

// MatchAll matches every ranked player, preserving input order
func (m *Matcher) MatchAll(players []models.RankedPlayer, catalog []models.RemotePlayer) []models.MatchResult {
	results := make([]models.MatchResult, 0, len(players))
	for _, p := range players {
		results = append(results, m.Match(p, catalog))
	}
	return results
}

// Nearest returns the highest scoring same-position candidate regardless of the
// threshold. It exists to explain unmatched players in logs and reports.
func (m *Matcher) Nearest(p models.RankedPlayer, catalog []models.RemotePlayer) (models.RemotePlayer, float64, bool) {
	if FoldName(p.Name) == "" {
		return models.RemotePlayer{}, 0, false
	}
	return m.bestCandidate(p, catalog)
}

// Search filters matches by name: a normalized substring hit or a similarity score at
// or above the search threshold. Input order is preserved.
func (m *Matcher) Search(matches []models.MatchResult, query string) []models.MatchResult {
	q := NormalizeName(query)
	if q == "" {
		return nil
	}

	var hits []models.MatchResult
	for _, mr := range matches {
		name := NormalizeName(mr.Ranked.Name)
		if strings.Contains(name, q) || m.scorer(query, mr.Ranked.Name) >= m.searchThreshold {
			hits = append(hits, mr)
		}
	}
	return hits
}

// bestCandidate scans same-position candidates; strict comparison keeps the earliest on ties
func (m *Matcher) bestCandidate(p models.RankedPlayer, catalog []models.RemotePlayer) (models.RemotePlayer, float64, bool) {
	var (
		best  models.RemotePlayer
		score float64
		found bool
	)
	for _, c := range catalog {
		if c.Position != p.Position {
			continue
		}
		s := m.scorer(p.Name, c.Name)
		if alias := aliasName(c); alias != "" {
			if as := m.scorer(p.Name, alias); as > s {
				s = as
			}
		}
		if !found || s > score {
			best, score, found = c, s, true
		}
	}
	return best, score, found
}

func aliasName(c models.RemotePlayer) string {
	if c.FirstName == "" || c.LastName == "" {
		return ""
	}
	alias := c.FirstName + " " + c.LastName
	if FoldName(alias) == FoldName(c.Name) {
		return ""
	}
	return alias
}

func surnameCandidate(p models.RankedPlayer, catalog []models.RemotePlayer) (models.RemotePlayer, bool) {
	last := LastName(p.Name)
	team := strings.ToUpper(p.Team)
	if last == "" || team == "" || team == "FA" {
		return models.RemotePlayer{}, false
	}

	var (
		hit   models.RemotePlayer
		count int
	)
	for _, c := range catalog {
		if c.Position != p.Position || strings.ToUpper(c.Team) != team {
			continue
		}
		cl := LastName(c.LastName)
		if cl == "" {
			cl = LastName(c.Name)
		}
		if cl == last {
			hit = c
			count++
		}
	}
	return hit, count == 1
}
