package commands

import (
	"fmt"

	"github.com/Delaurensbot/BrabantRoyale/lib/serviceutil"
	"github.com/Delaurensbot/BrabantRoyale/services/analytics"
	"github.com/spf13/cobra"
)

var analyticsTop *int

func init() {
	analyticsTop = analyticsCmd.Flags().Int("top", 0, "Number of MVP rows to print, 0 uses the default.")
	rootCmd.AddCommand(analyticsCmd)
}

var analyticsCmd = &cobra.Command{
	Use:   "analytics [--top <n>]",
	Short: "Scrapes the RoyaleAPI war analytics page and prints MVP, reliability and promotion tables.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		svc := analytics.NewService(newClient(cfg), cfg.Clans)

		report, err := svc.Collect(cmd.Context(), *clanFlag, analytics.Options{Top: *analyticsTop})
		if err != nil {
			serviceutil.Fatal("failed to collect analytics report", err)
		}

		fmt.Println(report.RenderText())
	},
}
