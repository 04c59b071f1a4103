package processor

import (
	"context"
	"sync"

	"github.com/woozymasta/geojsontools/internal/config"
	"github.com/woozymasta/geojsontools/internal/metrics"

	"github.com/rs/zerolog/log"
)

type job struct {
	Index  int
	Source config.Source
}

type result struct {
	Index   int
	Outcome Outcome
}

// Run processes sources with a bounded worker pool and returns one Outcome
// per source in input order.
func (p *Processor) Run(ctx context.Context, sources []config.Source) []Outcome {
	concurrency := p.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	concurrency = min(concurrency, len(sources))

	jobs := make(chan job, len(sources))
	results := make(chan result, len(sources))

	go func() {
		for i, s := range sources {
			jobs <- job{Index: i, Source: s}
		}
		close(jobs)
	}()

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results <- result{Index: j.Index, Outcome: p.runOne(ctx, j.Source)}
			}
		}()
	}
	wg.Wait()
	close(results)

	outcomes := make([]Outcome, len(sources))
	for res := range results {
		outcomes[res.Index] = res.Outcome
	}

	return outcomes
}

func (p *Processor) runOne(ctx context.Context, s config.Source) Outcome {
	if err := ctx.Err(); err != nil {
		return Outcome{Name: s.Name, Status: StatusFailed, Err: err}
	}

	o := p.Process(ctx, s)
	metrics.SourcesProcessed.WithLabelValues(o.Status).Inc()

	event := log.Info()
	switch o.Status {
	case StatusFailed, StatusInvalid:
		event = log.Error().Err(o.Err)
	case StatusSkipped:
		event = log.Debug()
	}
	event.
		Str("source", s.Name).
		Str("status", o.Status).
		Int("features", o.Features).
		Int("added_points", o.Added).
		Str("path", o.Path).
		Msg("Source processed")

	return o
}
