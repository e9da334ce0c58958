package sleeper

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/logger"
	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/models"
)

type rawPlayer struct {
	PlayerID     string `json:"player_id"`
	FullName     string `json:"full_name"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Position     string `json:"position"`
	Team         string `json:"team"`
	Status       string `json:"status"`
	InjuryStatus string `json:"injury_status"`
	InjuryNotes  string `json:"injury_notes"`
}

type rawPick struct {
	PlayerID string `json:"player_id"`
	PickNo   int    `json:"pick_no"`
	Round    int    `json:"round"`
	PickedBy string `json:"picked_by"`
	RosterID int    `json:"roster_id"`
}

// Draft is the subset of draft metadata the board shows
type Draft struct {
	DraftID  string `json:"draft_id"`
	LeagueID string `json:"league_id"`
	Status   string `json:"status"`
	Type     string `json:"type"`
	Season   string `json:"season"`
	Settings struct {
		Teams  int `json:"teams"`
		Rounds int `json:"rounds"`
	} `json:"settings"`
}

// FetchPlayers downloads the NFL catalog. Sleeper returns an object keyed by id;
// the result is sorted by id so that catalog order, and with it match tie-breaking,
// is stable between fetches.
func (c *Client) FetchPlayers(ctx context.Context) ([]models.RemotePlayer, error) {
	raw := make(map[string]rawPlayer)
	if err := c.getJSON(ctx, "/players/nfl", &raw); err != nil {
		return nil, fmt.Errorf("fetch players: %w", err)
	}

	players := make([]models.RemotePlayer, 0, len(raw))
	skipped := 0
	for id, rp := range raw {
		p, err := toRemotePlayer(id, rp)
		if err != nil {
			skipped++
			continue
		}
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool { return players[i].ID < players[j].ID })

	logger.Info("Fetched Sleeper catalog", "players", len(players), "skipped", skipped)
	return players, nil
}

func toRemotePlayer(id string, rp rawPlayer) (models.RemotePlayer, error) {
	if rp.PlayerID != "" {
		id = rp.PlayerID
	}
	name := rp.FullName
	if name == "" {
		name = strings.TrimSpace(rp.FirstName + " " + rp.LastName)
	}

	status := models.ParseStatus(rp.Status)
	if injury := models.ParseStatus(rp.InjuryStatus); injury != models.StatusUnknown {
		status = injury
	}

	p, err := models.NewRemotePlayer(id, name, models.ParsePosition(rp.Position), rp.Team, status)
	if err != nil {
		return models.RemotePlayer{}, err
	}
	p.FirstName = rp.FirstName
	p.LastName = rp.LastName
	p.InjuryStatus = rp.InjuryStatus
	p.InjuryNotes = rp.InjuryNotes
	return p, nil
}

// FetchPicks downloads the picks made so far in a draft, in pick order
func (c *Client) FetchPicks(ctx context.Context, draftID string) ([]models.PickEvent, error) {
	if draftID == "" {
		return nil, fmt.Errorf("fetch picks: empty draft id")
	}
	var raw []rawPick
	if err := c.getJSON(ctx, "/draft/"+url.PathEscape(draftID)+"/picks", &raw); err != nil {
		return nil, fmt.Errorf("fetch picks: %w", err)
	}

	picks := make([]models.PickEvent, 0, len(raw))
	for _, rp := range raw {
		if rp.PlayerID == "" {
			continue
		}
		picks = append(picks, models.PickEvent{
			RemotePlayerID: rp.PlayerID,
			PickNumber:     rp.PickNo,
			Round:          rp.Round,
			DraftedBy:      rp.PickedBy,
		})
	}
	sort.SliceStable(picks, func(i, j int) bool { return picks[i].PickNumber < picks[j].PickNumber })

	logger.Debug("Fetched draft picks", "draft_id", draftID, "picks", len(picks))
	return picks, nil
}

// FetchDraft downloads draft metadata
func (c *Client) FetchDraft(ctx context.Context, draftID string) (*Draft, error) {
	if draftID == "" {
		return nil, fmt.Errorf("fetch draft: empty draft id")
	}
	var d Draft
	if err := c.getJSON(ctx, "/draft/"+url.PathEscape(draftID), &d); err != nil {
		return nil, fmt.Errorf("fetch draft: %w", err)
	}
	return &d, nil
}
