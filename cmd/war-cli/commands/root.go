package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Delaurensbot/BrabantRoyale/lib/clans"
	"github.com/Delaurensbot/BrabantRoyale/lib/configutil"
	"github.com/Delaurensbot/BrabantRoyale/lib/scrapers/fetch"
	"github.com/spf13/cobra"
)

type Config struct {
	FetchTimeoutSeconds int            `json:"fetch_timeout_seconds"`
	SnapshotPath        string         `json:"snapshot_path"`
	APIToken            string         `json:"api_token"`
	Clans               clans.Registry `json:"clans"`
}

var rootCmd = &cobra.Command{
	Use:   "war-cli",
	Short: "war-cli scrapes clan war stats from public pages and prints reports.",
}

var clanFlag *string

func init() {
	clanFlag = rootCmd.PersistentFlags().String("clan", "", "Clan tag or alias, defaults to the configured clan.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func readConfig() Config {
	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if os.IsNotExist(err) {
		cfg = Config{}
	} else if err != nil {
		fmt.Fprintln(os.Stderr, "failed to read config:", err)
		os.Exit(1)
	}
	if cfg.FetchTimeoutSeconds == 0 {
		cfg.FetchTimeoutSeconds = 25
	}
	if cfg.SnapshotPath == "" {
		cfg.SnapshotPath = "snapshots.json"
	}
	if len(cfg.Clans.Clans) == 0 {
		cfg.Clans = clans.DefaultRegistry()
	}
	return cfg
}

func newClient(cfg Config) *fetch.Client {
	return fetch.NewClient(time.Duration(cfg.FetchTimeoutSeconds) * time.Second)
}
