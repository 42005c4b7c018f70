package commands

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/storelens/storelens/app/database"
	"github.com/storelens/storelens/app/fetcher"
	"github.com/storelens/storelens/app/insights"
	"github.com/storelens/storelens/app/scraper"
)

var (
	scrapeJSON    bool
	scrapePersist bool
	scrapeTimeout time.Duration
	scrapeRPS     float64
)

func init() {
	scrapeCmd.Flags().BoolVar(&scrapeJSON, "json", false, "Print the profile as JSON")
	scrapeCmd.Flags().BoolVar(&scrapePersist, "persist", false, "Store the profile in the database")
	scrapeCmd.Flags().DurationVar(&scrapeTimeout, "timeout", 15*time.Second, "Per-request timeout")
	scrapeCmd.Flags().Float64Var(&scrapeRPS, "rps", scraper.DefaultRequestsPerSecond, "Requests per second (0 disables throttling)")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape <url>",
	Short: "Builds the brand profile of a storefront.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := fetcher.DefaultOptions()
		opts.Timeout = scrapeTimeout
		opts.Logger = slog.Default()

		s := scraper.New(fetcher.New(opts), scraper.Options{
			RequestsPerSecond: scrapeRPS,
			Logger:            slog.Default(),
		})

		var repo database.BrandRepositoryInterface
		if scrapePersist {
			r, closeDB, err := openRepository()
			if err != nil {
				return err
			}
			defer closeDB()
			repo = r
		}

		result, err := insights.NewService(s, repo, nil, slog.Default()).Fetch(cmd.Context(), insights.Request{
			WebsiteURL: args[0],
			Persist:    scrapePersist,
		})
		if err != nil {
			return err
		}

		if scrapeJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result.Brand)
		}

		renderProfile(result.Brand)
		for _, msg := range result.Brand.Meta.Errors {
			fmt.Fprintln(os.Stderr, "warning:", msg)
		}
		return nil
	},
}
