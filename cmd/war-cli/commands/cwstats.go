package commands

import (
	"fmt"

	"github.com/Delaurensbot/BrabantRoyale/lib/serviceutil"
	"github.com/Delaurensbot/BrabantRoyale/services/cwrace"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(cwstatsCmd)
}

var cwstatsCmd = &cobra.Command{
	Use:   "cwstats",
	Short: "Scrapes the CWStats race page and prints the dashboard text.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		svc := cwrace.NewService(newClient(cfg), cfg.Clans)

		report, err := svc.Collect(cmd.Context(), *clanFlag)
		if err != nil {
			serviceutil.Fatal("failed to collect cwstats report", err)
		}

		fmt.Println(report.CopyAllText)
	},
}
