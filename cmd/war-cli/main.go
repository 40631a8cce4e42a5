package main

import (
	"context"

	"github.com/Delaurensbot/BrabantRoyale/cmd/war-cli/commands"
	"github.com/Delaurensbot/BrabantRoyale/lib/telemetry"
)

func main() {
	telemetry.SetupFromEnv(context.Background(), "war-cli")
	telemetry.InitSlog(false)
	commands.ExecuteContext(context.Background())
}
