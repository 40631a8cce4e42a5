// Package royale parses the clan, war race, join history, war log and
// leaderboard pages of the RoyaleAPI fan site. The pages carry no
// stable ids or classes, so every parser locates its region
// heuristically and degrades through fallbacks rather than failing on
// the first miss.
package royale

import "go.opentelemetry.io/otel"

var tracer = otel.Tracer("scrapers/royale")

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
