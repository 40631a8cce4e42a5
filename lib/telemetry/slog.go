package telemetry

import (
	"log/slog"
	"os"
)

// InitSlog installs the process-wide structured logger. Verbose mode
// drops the level to debug and includes source locations.
func InitSlog(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: verbose,
	})
	slog.SetDefault(slog.New(handler))
}
