package portfolio

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"stockwatch/internal/quote"
)

// Updater refreshes every coded instrument in a Set through a shared quote
// source. Fetches are independent and I/O-bound, so they fan out over a
// bounded pool; one failing code never blocks or aborts the others.
type Updater struct {
	Source quote.Source
	// MaxConcurrency bounds parallel fetches. Defaults to 4 when <= 0.
	MaxConcurrency int
	Log            *zap.Logger
}

// RefreshAll fetches a quote for the primary instrument and each watchlist
// instrument that has a non-empty code, overwrites their price fields in
// place and returns the full updated Set together with a per-code error map.
// Instruments with an empty code are skipped silently. Failed instruments
// keep their previous values.
func (u *Updater) RefreshAll(ctx context.Context, set Set) (Set, map[string]error) {
	out := set.clone()

	targets := make([]*Instrument, 0, 1+len(out.Watch))
	if out.Primary.Code != "" {
		targets = append(targets, &out.Primary)
	}
	for i := range out.Watch {
		if out.Watch[i].Code != "" {
			targets = append(targets, &out.Watch[i])
		}
	}

	errs := make(map[string]error)
	if len(targets) == 0 {
		return out, errs
	}

	maxConc := u.MaxConcurrency
	if maxConc <= 0 {
		maxConc = 4
	}
	sem := make(chan struct{}, maxConc)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, inst := range targets {
		inst := inst
		wg.Add(1)
		go func() {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				mu.Lock()
				errs[inst.Code] = &quote.Error{Code: inst.Code, Kind: quote.KindNetwork, Err: ctx.Err()}
				mu.Unlock()
				return
			}

			snap, err := u.Source.Fetch(ctx, inst.Code)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs[inst.Code] = err
				if u.Log != nil {
					u.Log.Warn("refresh failed",
						zap.String("code", inst.Code),
						zap.String("name", inst.Name),
						zap.Error(err))
				}
				return
			}
			inst.CurrentPrice = snap.Price
			inst.Change = snap.Change
			inst.ChangeRate = snap.ChangeRate
			inst.LastUpdated = snap.FetchedAt
		}()
	}
	wg.Wait()

	if u.Log != nil {
		u.Log.Info("refresh complete",
			zap.Int("requested", len(targets)),
			zap.Int("failed", len(errs)))
	}
	return out, errs
}
