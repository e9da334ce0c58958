package dal

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/models"
)

func newLeague(name, draftURL, draftID string, now time.Time) (models.League, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.League{}, fmt.Errorf("league name is required")
	}
	return models.League{
		ID:        uuid.NewString(),
		Name:      name,
		DraftURL:  strings.TrimSpace(draftURL),
		DraftID:   strings.TrimSpace(draftID),
		CreatedAt: now,
		LastUsed:  now,
	}, nil
}

func sortByLastUsed(leagues []models.League) {
	sort.SliceStable(leagues, func(i, j int) bool {
		if !leagues[i].LastUsed.Equal(leagues[j].LastUsed) {
			return leagues[i].LastUsed.After(leagues[j].LastUsed)
		}
		return leagues[i].Name < leagues[j].Name
	})
}

func exportLeagues(leagues []models.League) ([]byte, error) {
	byName := make(map[string]models.League, len(leagues))
	for _, l := range leagues {
		byName[l.Name] = l
	}
	return json.MarshalIndent(byName, "", "  ")
}

// importEntry accepts both the exported format and the older snake_case files
type importEntry struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	DraftURL       string `json:"draftUrl"`
	DraftID        string `json:"draftId"`
	CreatedAt      string `json:"createdAt"`
	LastUsed       string `json:"lastUsed"`
	LegacyDraftURL string `json:"draft_url"`
	LegacyDraftID  string `json:"draft_id"`
	LegacyCreated  string `json:"created_at"`
	LegacyLastUsed string `json:"last_used"`
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func parseTime(s string, def time.Time) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return def
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// parseImport decodes a name-keyed league map. Entries without a name take their key.
func parseImport(data []byte, now time.Time) ([]models.League, error) {
	var raw map[string]importEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode leagues: %w", err)
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	leagues := make([]models.League, 0, len(raw))
	for _, key := range keys {
		e := raw[key]
		name := strings.TrimSpace(firstNonEmpty(e.Name, key))
		if name == "" {
			continue
		}
		id := e.ID
		if id == "" {
			id = uuid.NewString()
		}
		created := parseTime(firstNonEmpty(e.CreatedAt, e.LegacyCreated), now)
		leagues = append(leagues, models.League{
			ID:        id,
			Name:      name,
			DraftURL:  firstNonEmpty(e.DraftURL, e.LegacyDraftURL),
			DraftID:   firstNonEmpty(e.DraftID, e.LegacyDraftID),
			CreatedAt: created,
			LastUsed:  parseTime(firstNonEmpty(e.LastUsed, e.LegacyLastUsed), created),
		})
	}
	return leagues, nil
}
