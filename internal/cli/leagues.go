package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/dal"
	"github.com/Billy-Davies-2/fantasy-draft-aid/internal/sleeper"
)

var leaguesCmd = &cobra.Command{
	Use:   "leagues",
	Short: "Manage saved leagues",
	Long: `Saved leagues remember a draft so it can be picked by name.

Example:
  draftaid leagues add work https://sleeper.com/draft/nfl/1124851234567890
  draftaid leagues list
  draftaid leagues export > leagues.json`,
}

var leaguesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List leagues, most recently used first",
	Args:  cobra.NoArgs,
	RunE: withLeagues(func(cmd *cobra.Command, store dal.LeagueDAL, args []string) error {
		leagues, err := store.ListLeagues()
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tDRAFT ID\tLAST USED")
		for _, l := range leagues {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", l.Name, l.DraftID, l.LastUsed.Local().Format(time.DateTime))
		}
		return tw.Flush()
	}),
}

var leaguesAddCmd = &cobra.Command{
	Use:   "add <name> <draft-url-or-id>",
	Short: "Save a league",
	Args:  cobra.ExactArgs(2),
	RunE: withLeagues(func(cmd *cobra.Command, store dal.LeagueDAL, args []string) error {
		url, id, err := draftRef(args[1])
		if err != nil {
			return err
		}
		league, err := store.AddLeague(args[0], url, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "added %s (draft %s)\n", league.Name, league.DraftID)
		return nil
	}),
}

var leaguesUpdateCmd = &cobra.Command{
	Use:   "update <name> <draft-url-or-id>",
	Short: "Point a league at a different draft",
	Args:  cobra.ExactArgs(2),
	RunE: withLeagues(func(cmd *cobra.Command, store dal.LeagueDAL, args []string) error {
		url, id, err := draftRef(args[1])
		if err != nil {
			return err
		}
		league, err := store.UpdateLeague(args[0], url, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "updated %s (draft %s)\n", league.Name, league.DraftID)
		return nil
	}),
}

var leaguesDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a league",
	Args:  cobra.ExactArgs(1),
	RunE: withLeagues(func(cmd *cobra.Command, store dal.LeagueDAL, args []string) error {
		if err := store.DeleteLeague(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
		return nil
	}),
}

var leaguesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every league as JSON to stdout",
	Args:  cobra.NoArgs,
	RunE: withLeagues(func(cmd *cobra.Command, store dal.LeagueDAL, args []string) error {
		data, err := store.Export()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}),
}

var leaguesImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import leagues from an export file",
	Args:  cobra.ExactArgs(1),
	RunE: withLeagues(func(cmd *cobra.Command, store dal.LeagueDAL, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		n, err := store.Import(data)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d leagues\n", n)
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(leaguesCmd)
	leaguesCmd.AddCommand(leaguesListCmd, leaguesAddCmd, leaguesUpdateCmd, leaguesDeleteCmd, leaguesExportCmd, leaguesImportCmd)
}

// withLeagues opens the configured league store around fn
func withLeagues(fn func(*cobra.Command, dal.LeagueDAL, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		store, err := openLeagues(cfg)
		if err != nil {
			return err
		}
		defer store.Close()
		return fn(cmd, store, args)
	}
}

// draftRef splits a draft URL or bare id into the stored url and id
func draftRef(raw string) (url, id string, err error) {
	id = sleeper.ParseDraftID(raw)
	if id == "" {
		return "", "", fmt.Errorf("no draft id in %q", raw)
	}
	if id != raw {
		url = raw
	}
	return url, id, nil
}
