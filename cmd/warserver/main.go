package main

import (
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/Delaurensbot/BrabantRoyale/lib/clans"
	"github.com/Delaurensbot/BrabantRoyale/lib/configutil"
	"github.com/Delaurensbot/BrabantRoyale/lib/scrapers/fetch"
	"github.com/Delaurensbot/BrabantRoyale/lib/serviceutil"
	"github.com/Delaurensbot/BrabantRoyale/lib/snapshotstore"
	"github.com/Delaurensbot/BrabantRoyale/services/analytics"
	"github.com/Delaurensbot/BrabantRoyale/services/cwrace"
	"github.com/Delaurensbot/BrabantRoyale/services/joins"
	"github.com/Delaurensbot/BrabantRoyale/services/race"
	"github.com/Delaurensbot/BrabantRoyale/services/recap"
)

type Config struct {
	Port                int            `json:"port"`
	FetchTimeoutSeconds int            `json:"fetch_timeout_seconds"`
	SnapshotPath        string         `json:"snapshot_path"`
	APIToken            string         `json:"api_token"`
	Clans               clans.Registry `json:"clans"`
}

func defaultConfig() Config {
	return Config{
		Port:                8000,
		FetchTimeoutSeconds: 25,
		SnapshotPath:        "snapshots.json",
		Clans:               clans.DefaultRegistry(),
	}
}

func main() {
	verbose := flag.Bool("v", false, "Enable verbose logging/instrumentation.")
	flag.Parse()

	ctx := serviceutil.SignalContext()

	InitTelemetry(ctx, *verbose)

	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if os.IsNotExist(err) {
		cfg = defaultConfig()
	} else if err != nil {
		serviceutil.Fatal("read config", err)
	}
	if cfg.Port == 0 {
		cfg.Port = 8000
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

	client := fetch.NewClient(time.Duration(cfg.FetchTimeoutSeconds) * time.Second)
	store := snapshotstore.New(cfg.SnapshotPath)

	handlers := Handlers{
		Race:      race.NewService(client, cfg.Clans),
		CWRace:    cwrace.NewService(client, cfg.Clans),
		Analytics: analytics.NewService(client, cfg.Clans),
		Recap:     recap.NewService(client, cfg.Clans, store, cfg.APIToken),
		Joins:     joins.NewService(client, cfg.Clans),
	}

	mux := http.NewServeMux()
	handlers.Register(mux)

	serviceutil.StartHttpServer(ctx, cfg.Port, mux)
}
