package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/session"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Print the draft board once",
	Long: `Loads rankings, matches them against the Sleeper catalog, applies the picks
of a draft and prints the best available players at each position.

Example:
  draftaid board --csv rankings.csv
  draftaid board --csv rankings.csv --draft-id https://sleeper.com/draft/nfl/1124851234567890
  draftaid board --csv rankings.csv --league work --top 8`,
	RunE: runBoard,
}

var (
	boardCSV     string
	boardDraftID string
	boardLeague  string
	boardTop     int
)

func init() {
	rootCmd.AddCommand(boardCmd)

	boardCmd.Flags().StringVar(&boardCSV, "csv", "", "rankings CSV (required)")
	boardCmd.Flags().StringVar(&boardDraftID, "draft-id", "", "Sleeper draft id or URL")
	boardCmd.Flags().StringVar(&boardLeague, "league", "", "saved league whose draft to use")
	boardCmd.Flags().IntVar(&boardTop, "top", 5, "players per position")
	boardCmd.Flags().BoolVar(&refreshCatalog, "refresh-catalog", false, "ignore the cached catalog and fetch it from Sleeper")
	_ = boardCmd.MarkFlagRequired("csv")
	boardCmd.MarkFlagsMutuallyExclusive("draft-id", "league")
}

// newCLISession builds a session over the Sleeper client and loads csvPath into it
func newCLISession(ctx context.Context, csvPath string) (*session.Session, func(), error) {
	client := newSleeperClient(cfg.Sleeper)
	catalog, closeCatalog, err := newCatalog(ctx, cfg.Redis, client)
	if err != nil {
		return nil, nil, err
	}
	s := session.New(session.Config{
		Matcher: newMatcher(cfg.Match),
		Catalog: catalog,
		Picks:   client,
	})

	f, err := os.Open(csvPath)
	if err != nil {
		closeCatalog()
		return nil, nil, err
	}
	defer f.Close()
	if _, err := s.LoadRankingsCSV(f); err != nil {
		closeCatalog()
		return nil, nil, err
	}
	if _, err := loadSessionCatalog(ctx, s); err != nil {
		closeCatalog()
		return nil, nil, err
	}
	return s, closeCatalog, nil
}

// resolveDraftID returns --draft-id, or the draft of --league after marking it used
func resolveDraftID() (string, error) {
	if boardLeague == "" {
		return boardDraftID, nil
	}
	leagues, err := openLeagues(cfg)
	if err != nil {
		return "", err
	}
	defer leagues.Close()

	league, err := leagues.GetLeague(boardLeague)
	if err != nil {
		return "", fmt.Errorf("league %q: %w", boardLeague, err)
	}
	if err := leagues.MarkUsed(league.Name); err != nil {
		return "", err
	}
	return league.DraftID, nil
}

func runBoard(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	draftID, err := resolveDraftID()
	if err != nil {
		return err
	}

	s, closeSession, err := newCLISession(ctx, boardCSV)
	if err != nil {
		return err
	}
	defer closeSession()

	if draftID != "" {
		if _, err := s.SetDraftID(ctx, draftID); err != nil {
			return err
		}
		if _, err := s.Refresh(ctx); err != nil {
			return err
		}
	}

	board, err := s.Board(boardTop)
	if err != nil {
		return err
	}
	return printBoard(cmd.OutOrStdout(), s.Summary(), board)
}

func printBoard(out io.Writer, sum session.Summary, board []session.PositionBoard) error {
	if sum.DraftID != "" {
		fmt.Fprintf(out, "Draft %s: %d drafted, %d available\n\n", sum.DraftID, sum.Drafted, sum.Available)
	} else {
		fmt.Fprintf(out, "No draft: %d available\n\n", sum.Available)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, pos := range board {
		fmt.Fprintf(tw, "%s\n", pos.Position)
		if len(pos.Players) == 0 {
			fmt.Fprintf(tw, "  -\n")
		}
		for _, p := range pos.Players {
			fmt.Fprintf(tw, "  %d\t%s\t%s\t", p.Rank, p.Name, p.Team)
			if p.Tier > 0 {
				fmt.Fprintf(tw, "T%d", p.Tier)
			}
			fmt.Fprintln(tw)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write board: %w", err)
	}
	return nil
}
