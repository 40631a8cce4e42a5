package commands

import (
	"fmt"

	"github.com/Delaurensbot/BrabantRoyale/lib/serviceutil"
	"github.com/Delaurensbot/BrabantRoyale/lib/snapshotstore"
	"github.com/Delaurensbot/BrabantRoyale/services/recap"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(recapCmd)
}

var recapCmd = &cobra.Command{
	Use:   "recap",
	Short: "Prints the leaderboard movement recap and the latest end-war summary.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		store := snapshotstore.New(cfg.SnapshotPath)
		svc := recap.NewService(newClient(cfg), cfg.Clans, store, cfg.APIToken)

		report, err := svc.Collect(cmd.Context(), *clanFlag)
		if err != nil {
			serviceutil.Fatal("failed to collect recap", err)
		}

		fmt.Println("Leaderboard recap:")
		fmt.Printf("- Rank now: %s (prev %s), trophies %s\n",
			orUnknown(report.RankNow), orUnknown(report.RankPrev), orUnknown(report.TrophiesNow))
		fmt.Printf("- Movement: %s (source: %s)\n", report.Movement, report.Source)
		for _, e := range report.Errors {
			fmt.Println("- Warning:", e)
		}

		endWar, err := svc.CollectEndWar(cmd.Context(), *clanFlag)
		if err != nil {
			serviceutil.Fatal("failed to collect end-war summary", err)
		}

		fmt.Println()
		fmt.Println("End of war:")
		fmt.Printf("- Place %s with %s boat points, trophy change %s\n",
			orUnknown(endWar.Rank), orUnknown(endWar.BoatPoints), orUnknown(endWar.TrophyChange))
		if endWar.TopPlayer != nil {
			fmt.Printf("- Top player: %s (%d points)\n", endWar.TopPlayer.Name, endWar.TopPlayer.Points)
		}
		fmt.Printf("- Perfect players (16/16): %d, together %d points\n", endWar.Count16, endWar.SumPoints16)
		if len(endWar.Missers) == 0 {
			fmt.Println("- Nobody missed attacks.")
		} else {
			fmt.Printf("- Missed attacks total: %d\n", endWar.MissedAttacksTotal)
			for _, m := range endWar.Missers {
				fmt.Printf("  - %s: %d/16 used, %d missed, %d points\n", m.Name, m.Attacks, m.Missed, m.Points)
			}
		}
		for _, e := range endWar.Errors {
			fmt.Println("- Warning:", e)
		}
	},
}

func orUnknown(v *int) string {
	if v == nil {
		return "?"
	}
	return fmt.Sprintf("%d", *v)
}
