// Package cwstats parses the race page of the CWStats fan site: the
// compact race standings rows, the Clan Stats summary panel and the
// battles-left table. CWStats renders most of this as anchor rows and
// loose token runs rather than tables, so the parsers here lean on the
// flattened token stream.
package cwstats

import "go.opentelemetry.io/otel"

var tracer = otel.Tracer("scrapers/cwstats")

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
