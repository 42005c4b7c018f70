package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/storelens/storelens/app/scraper"
)

func init() {
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show <url>",
	Short: "Prints a stored brand profile.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, closeDB, err := openRepository()
		if err != nil {
			return err
		}
		defer closeDB()

		origin := scraper.NormalizeOrigin(args[0])
		profile, err := repo.FindByOrigin(cmd.Context(), origin)
		if err != nil {
			return err
		}
		if profile == nil {
			return fmt.Errorf("no stored profile for %s", origin)
		}

		renderProfile(profile)

		rivals, err := repo.ListCompetitors(cmd.Context(), origin)
		if err != nil {
			return err
		}
		if len(rivals) > 0 {
			t := newTable()
			t.AppendHeader(table.Row{"Competitor"})
			for _, r := range rivals {
				t.AppendRow(table.Row{r})
			}
			t.Render()
		}
		return nil
	},
}
