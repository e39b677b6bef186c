package etl

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

type Summary struct {
	Fetched    int
	Kept       int
	Activities int
	Sinks      []string
	Took       time.Duration
}

// Run fetches the dataset once, filters and publishes it to every sink.
// It stops at the first sink that fails.
func Run(ctx context.Context, f Fetcher, sinks []Sink, log *slog.Logger) (Summary, error) {
	if len(sinks) == 0 {
		return Summary{}, fmt.Errorf("etl: no sinks configured")
	}
	start := time.Now()

	records, err := f.Fetch(ctx)
	if err != nil {
		return Summary{}, err
	}
	kept := WithCoordinates(records)
	acts := Activities(kept)

	props, err := json.MarshalIndent(kept, "", "  ")
	if err != nil {
		return Summary{}, fmt.Errorf("encode properties: %w", err)
	}
	actsJSON, err := json.MarshalIndent(acts, "", "  ")
	if err != nil {
		return Summary{}, fmt.Errorf("encode activities: %w", err)
	}

	sum := Summary{Fetched: len(records), Kept: len(kept), Activities: len(acts)}
	for _, s := range sinks {
		if err := s.Publish(ctx, props, actsJSON); err != nil {
			return sum, err
		}
		sum.Sinks = append(sum.Sinks, s.Name())
		log.DebugContext(ctx, "published", "sink", s.Name(), "bytes", len(props)+len(actsJSON))
	}
	sum.Took = time.Since(start)

	log.InfoContext(ctx, "etl complete",
		"fetched", sum.Fetched,
		"kept", sum.Kept,
		"dropped", sum.Fetched-sum.Kept,
		"activities", sum.Activities,
		"took", sum.Took)
	return sum, nil
}
