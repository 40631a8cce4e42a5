package commands

import (
	"fmt"

	"github.com/Delaurensbot/BrabantRoyale/lib/serviceutil"
	"github.com/Delaurensbot/BrabantRoyale/services/joins"
	"github.com/spf13/cobra"
)

var joinsLimit *int

func init() {
	joinsLimit = joinsCmd.Flags().Int("limit", 0, "Maximum number of joins to print, 0 uses the default.")
	rootCmd.AddCommand(joinsCmd)
}

var joinsCmd = &cobra.Command{
	Use:   "joins [--limit <n>]",
	Short: "Prints recent clan joins with account levels and profile links.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		svc := joins.NewService(newClient(cfg), cfg.Clans)

		report, err := svc.Collect(cmd.Context(), *clanFlag, *joinsLimit)
		if err != nil {
			serviceutil.Fatal("failed to collect joins", err)
		}

		fmt.Println(report.RenderText())
	},
}
