package push

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/foundation-rs/invpush/pkg/config"
)

// PushAll pushes the inventory content to every enabled server with bounded
// concurrency. The default limit of 1 keeps execution sequential. A failure
// on one server never aborts the remaining ones.
func (p *Pusher) PushAll(ctx context.Context, inv *config.Inventory) []Result {
	var results []Result
	var names []string

	for name, srv := range inv.Servers {
		if !srv.IsEnabled() {
			p.logger.Info().Str("server", name).Msg("skipping disabled server")
			results = append(results, Result{Server: name, Type: srv.GetType(), Success: true, Skipped: true})
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	if len(names) == 0 {
		p.logger.Warn().Msg("no enabled servers to push to")
		return results
	}

	maxConcurrent := inv.GetMaxConcurrentPushes()
	p.logger.Info().
		Int("servers", len(names)).
		Int("max_concurrent", maxConcurrent).
		Str("content", inv.Content).
		Msg("starting push run")

	sem := semaphore.NewWeighted(int64(maxConcurrent))
	g, gCtx := errgroup.WithContext(ctx)
	resultsChan := make(chan Result, len(names))

	for _, name := range names {
		srv := inv.Servers[name]

		g.Go(func() error {
			if err := sem.Acquire(gCtx, 1); err != nil {
				resultsChan <- Result{Server: name, Type: srv.GetType(), Error: err}
				return nil
			}
			defer sem.Release(1)

			resultsChan <- p.PushServer(gCtx, name, inv.Content, srv)

			// Per-target failures are reported through the result, never as
			// a group error, so one bad server cannot cancel the others.
			return nil
		})
	}

	_ = g.Wait()
	close(resultsChan)

	for result := range resultsChan {
		results = append(results, result)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Server < results[j].Server
	})

	succeeded, failed, skipped := Summarize(results)
	p.logger.Info().
		Int("successful", succeeded).
		Int("failed", failed).
		Int("skipped", skipped).
		Msg("push run completed")

	return results
}

// Summarize counts successful, failed and skipped targets
func Summarize(results []Result) (succeeded, failed, skipped int) {
	for _, result := range results {
		switch {
		case result.Skipped:
			skipped++
		case result.Success:
			succeeded++
		default:
			failed++
		}
	}
	return succeeded, failed, skipped
}
