package rankings

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/logger"
	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/models"
)

var (
	// ErrMissingColumn is returned when the header lacks a name or position column
	ErrMissingColumn = errors.New("missing required column")
	// ErrMalformed is returned when the file is empty or is not parseable CSV
	ErrMalformed = errors.New("malformed rankings file")

	errBlankRank = errors.New("blank rank")
)

// Result is the outcome of loading a rankings file
type Result struct {
	Players []models.RankedPlayer
	Skipped int
}

var (
	utf8BOM   = []byte{0xEF, 0xBB, 0xBF}
	posRankRe = regexp.MustCompile(`^([A-Za-z/]+?)(\d+)$`)
	digitsRe  = regexp.MustCompile(`-?\d+`)
)

// column aliases, FantasyPros cheat sheet first
var columns = map[string][]string{
	"rank":     {"RK", "RANK", "OVERALL"},
	"tier":     {"TIERS", "TIER"},
	"name":     {"PLAYER NAME", "NAME", "PLAYER"},
	"team":     {"TEAM"},
	"position": {"POS", "POSITION"},
	"bye":      {"BYE WEEK", "BYE"},
	"sos":      {"SOS SEASON", "SOS"},
	"ecrAdp":   {"ECR VS. ADP", "ECR VS ADP"},
}

// LoadFile parses a rankings CSV from disk
func LoadFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rankings: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load parses a rankings CSV. Rows that cannot form a valid RankedPlayer are skipped
// and counted, as are rows with a blank rank and rows repeating an earlier rank.
// Players are returned in rank order; a missing rank column means row order.
func Load(r io.Reader) (*Result, error) {
	br := bufio.NewReader(r)
	if bom, err := br.Peek(3); err == nil && bytes.Equal(bom, utf8BOM) {
		_, _ = br.Discard(3)
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, readError("read header", err)
	}
	idx := indexHeader(header)
	if _, ok := idx["name"]; !ok {
		return nil, fmt.Errorf("%w: player name", ErrMissingColumn)
	}
	if _, ok := idx["position"]; !ok {
		return nil, fmt.Errorf("%w: position", ErrMissingColumn)
	}

	res := &Result{}
	ranks := make(map[int]int)
	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, readError(fmt.Sprintf("read row %d", row+1), err)
		}
		row++

		p, err := parseRow(record, idx, row)
		if err != nil {
			logger.Debug("Skipping rankings row", "row", row, "error", err)
			res.Skipped++
			continue
		}
		if first, dup := ranks[p.Rank]; dup {
			logger.Warn("Skipping rankings row with duplicate rank", "row", row, "rank", p.Rank, "first_row", first, "player", p.Name)
			res.Skipped++
			continue
		}
		ranks[p.Rank] = row
		res.Players = append(res.Players, p)
	}

	sort.SliceStable(res.Players, func(i, j int) bool {
		return res.Players[i].Rank < res.Players[j].Rank
	})

	logger.Info("Loaded rankings", "players", len(res.Players), "skipped", res.Skipped)
	return res, nil
}

// readError marks CSV syntax errors and an empty file as ErrMalformed; other read
// failures (a closed body, an exceeded upload limit) pass through unmarked
func readError(what string, err error) error {
	var pe *csv.ParseError
	if errors.Is(err, io.EOF) || errors.As(err, &pe) {
		return fmt.Errorf("%w: %s: %w", ErrMalformed, what, err)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func indexHeader(header []string) map[string]int {
	idx := make(map[string]int)
	for i, h := range header {
		h = strings.ToUpper(strings.TrimSpace(h))
		for key, aliases := range columns {
			if _, seen := idx[key]; seen {
				continue
			}
			for _, a := range aliases {
				if h == a {
					idx[key] = i
					break
				}
			}
		}
	}
	return idx
}

func field(record []string, idx map[string]int, key string) string {
	i, ok := idx[key]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func parseRow(record []string, idx map[string]int, row int) (models.RankedPlayer, error) {
	rank := row
	if _, ok := idx["rank"]; ok {
		raw := field(record, idx, "rank")
		if raw == "" {
			return models.RankedPlayer{}, errBlankRank
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return models.RankedPlayer{}, fmt.Errorf("rank %q: %w", raw, err)
		}
		rank = n
	}

	pos, posRank := parsePosition(field(record, idx, "position"))

	p, err := models.NewRankedPlayer(field(record, idx, "name"), pos, field(record, idx, "team"), rank)
	if err != nil {
		return models.RankedPlayer{}, err
	}
	p.PositionRank = posRank
	p.Tier = parseInt(field(record, idx, "tier"), 0)
	p.ByeWeek = parseInt(field(record, idx, "bye"), 0)
	p.SOS = parseSOS(field(record, idx, "sos"))
	p.ECRvsADP = parseInt(field(record, idx, "ecrAdp"), 0)
	return p, nil
}

// parsePosition splits "WR12" into WR and 12; a bare "WR" has no position rank
func parsePosition(raw string) (models.Position, int) {
	if m := posRankRe.FindStringSubmatch(strings.TrimSpace(raw)); m != nil {
		n, _ := strconv.Atoi(m[2])
		return models.ParsePosition(m[1]), n
	}
	return models.ParsePosition(raw), 0
}

// parseInt tolerates "", "-", "NA", "+3" and stray text around a number
func parseInt(raw string, def int) int {
	s := strings.TrimSpace(raw)
	switch strings.ToUpper(s) {
	case "", "-", "NA", "N/A":
		return def
	}
	s = strings.TrimPrefix(s, "+")
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if m := digitsRe.FindString(s); m != "" {
		if n, err := strconv.Atoi(m); err == nil {
			return n
		}
	}
	return def
}

// parseSOS turns "4 out of 5 stars" into "4/5"
func parseSOS(raw string) string {
	if m := digitsRe.FindString(raw); m != "" {
		return m + "/5"
	}
	return raw
}
