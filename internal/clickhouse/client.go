package clickhouse

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/logger"
	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/models"
)

// ADPWindow is how far back average draft position looks
const ADPWindow = 90 * 24 * time.Hour

// ReplacingMergeTree collapses re-recorded picks of the same draft, so refreshes stay idempotent
const schema = `
	CREATE TABLE IF NOT EXISTS draft_picks (
		draft_id    String,
		player_id   String,
		pick_no     UInt32,
		round       UInt16,
		picked_by   String,
		recorded_at DateTime
	) ENGINE = ReplacingMergeTree(recorded_at)
	ORDER BY (draft_id, player_id)
`

// Client records draft picks and serves average draft position
type Client struct {
	conn driver.Conn
}

// NewClient creates a new ClickHouse client and makes sure the picks table exists
func NewClient(addr, database, username, password string) (*Client, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: database,
			Username: username,
			Password: password,
		},
		DialTimeout: 5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}
	if err := conn.Exec(ctx, schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create draft_picks table: %w", err)
	}

	return &Client{conn: conn}, nil
}

// RecordPicks appends the picks of a draft in one batch
func (c *Client) RecordPicks(ctx context.Context, draftID string, picks []models.PickEvent) error {
	if len(picks) == 0 {
		return nil
	}

	batch, err := c.conn.PrepareBatch(ctx, "INSERT INTO draft_picks")
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	now := time.Now().UTC()
	for _, p := range picks {
		if err := batch.Append(draftID, p.RemotePlayerID, uint32(p.PickNumber), uint16(p.Round), p.DraftedBy, now); err != nil {
			_ = batch.Abort()
			return fmt.Errorf("append pick %d: %w", p.PickNumber, err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	logger.Debug("Recorded picks to ClickHouse", "draft_id", draftID, "picks", len(picks))
	return nil
}

// AverageDraftPositions returns ADP per catalog player over the last ADPWindow, lowest first
func (c *Client) AverageDraftPositions(ctx context.Context) ([]models.ADPEntry, error) {
	query := `
		SELECT
			player_id,
			avg(pick_no) AS adp,
			count() AS drafts
		FROM draft_picks FINAL
		WHERE recorded_at >= now() - toIntervalSecond(?)
		GROUP BY player_id
	`

	rows, err := c.conn.Query(ctx, query, int64(ADPWindow.Seconds()))
	if err != nil {
		return nil, fmt.Errorf("query adp: %w", err)
	}
	defer rows.Close()

	var entries []models.ADPEntry
	for rows.Next() {
		var (
			id     string
			adp    float64
			drafts uint64
		)
		if err := rows.Scan(&id, &adp, &drafts); err != nil {
			return nil, err
		}
		entries = append(entries, models.ADPEntry{RemotePlayerID: id, AveragePick: adp, Drafts: int(drafts)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	SortADP(entries)
	return entries, nil
}

// SortADP orders entries by average pick, then id
func SortADP(entries []models.ADPEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].AveragePick != entries[j].AveragePick {
			return entries[i].AveragePick < entries[j].AveragePick
		}
		return entries[i].RemotePlayerID < entries[j].RemotePlayerID
	})
}

// Close closes the ClickHouse connection
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
