package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/rankings"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Report ranked players with no catalog match",
	Long: `Matches a rankings CSV against the Sleeper catalog and lists every player
that could not be matched, with the nearest catalog name for reference.

Example:
  draftaid match --csv rankings.csv`,
	RunE: runMatch,
}

var matchCSV string

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringVar(&matchCSV, "csv", "", "rankings CSV (required)")
	matchCmd.Flags().BoolVar(&refreshCatalog, "refresh-catalog", false, "ignore the cached catalog and fetch it from Sleeper")
	_ = matchCmd.MarkFlagRequired("csv")
}

func runMatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	res, err := rankings.LoadFile(matchCSV)
	if err != nil {
		return err
	}

	catalog, closeCatalog, err := newCatalog(ctx, cfg.Redis, newSleeperClient(cfg.Sleeper))
	if err != nil {
		return err
	}
	defer closeCatalog()
	if refreshCatalog {
		if err := catalog.Invalidate(ctx); err != nil {
			return err
		}
	}
	remote, err := catalog.FetchPlayers(ctx)
	if err != nil {
		return err
	}

	m := newMatcher(cfg.Match)
	results := m.MatchAll(res.Players, remote)

	out := cmd.OutOrStdout()
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	unmatched := 0
	for _, r := range results {
		if r.Matched() {
			continue
		}
		unmatched++
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t", r.Ranked.Rank, r.Ranked.Name, r.Ranked.Position, r.Ranked.Team)
		if near, score, ok := m.Nearest(r.Ranked, remote); ok {
			fmt.Fprintf(tw, "nearest: %s (%s, %.2f)", near.Name, near.ID, score)
		}
		fmt.Fprintln(tw)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "%d of %d ranked players unmatched (threshold %.2f)\n", unmatched, len(results), m.Threshold())
	return nil
}
