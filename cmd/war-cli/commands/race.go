package commands

import (
	"fmt"

	"github.com/Delaurensbot/BrabantRoyale/lib/serviceutil"
	"github.com/Delaurensbot/BrabantRoyale/services/race"
	"github.com/spf13/cobra"
)

var raceTop *int
var raceStoryMax *int

func init() {
	raceTop = raceCmd.Flags().Int("top", 0, "Limit the player list to the first N rows, 0 keeps all.")
	raceStoryMax = raceCmd.Flags().Int("story-max", 0, "Cap the short story length in runes.")
	rootCmd.AddCommand(raceCmd)
}

var raceCmd = &cobra.Command{
	Use:   "race [--top <n>] [--story-max <runes>]",
	Short: "Scrapes the RoyaleAPI race page and prints the full war report.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		svc := race.NewService(newClient(cfg), cfg.Clans)

		report, err := svc.Collect(cmd.Context(), *clanFlag, race.Options{
			Top:      *raceTop,
			StoryMax: *raceStoryMax,
		})
		if err != nil {
			serviceutil.Fatal("failed to collect race report", err)
		}

		blocks := []string{
			report.OverviewText,
			report.InsightsText,
			report.ClanStatsText,
			report.PlayersText,
			report.BattlesLeftText,
			report.RiskText,
			report.Day1Text,
			report.Day4Text,
			report.Day4HighFameText,
			report.StoryText,
		}
		for _, block := range blocks {
			if block == "" {
				continue
			}
			fmt.Println(block)
			fmt.Println()
		}
	},
}
