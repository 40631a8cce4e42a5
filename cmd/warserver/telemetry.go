package main

import (
	"context"
	"os"

	"github.com/Delaurensbot/BrabantRoyale/lib/serviceutil"
	"github.com/Delaurensbot/BrabantRoyale/lib/telemetry"
)

func InitTelemetry(ctx context.Context, verbose bool) {
	telemetry.InitSlog(verbose)

	tel, err := telemetry.SetupFromEnv(ctx, "warserver")
	if os.IsNotExist(err) {
		// no telemetry.json5, run without exporters
		return
	}
	if err != nil {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	go func() {
		<-ctx.Done()
		tel.Shutdown(context.Background())
	}()

	if verbose {
		telemetry.InstrumentPerfStats(ctx)
	}
}
