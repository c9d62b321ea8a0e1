package app

import (
	"context"
	"errors"

	"github.com/specialistvlad/pohcalc/internal/ctxlog"
	"github.com/specialistvlad/pohcalc/internal/session"
	"github.com/specialistvlad/pohcalc/modules/wxfeed"
)

// runWeatherFeed applies every observation of the feed to the stored
// sessions until ctx is cancelled.
func (a *App) runWeatherFeed(ctx context.Context) error {
	cfg := wxfeed.Config{URL: a.config.WeatherURL, InsecureSkipVerify: a.config.WeatherInsecure}
	return wxfeed.Listen(ctx, cfg, a.applyObservation)
}

// applyObservation writes obs into every stored session with a matching
// airport. Sessions deleted meanwhile are skipped.
func (a *App) applyObservation(ctx context.Context, obs wxfeed.Observation) {
	logger := ctxlog.FromContext(ctx)
	ids, err := a.store.IDs(ctx)
	if err != nil {
		logger.Error("Listing sessions failed.", "error", err)
		return
	}
	updated := 0
	for _, id := range ids {
		s, err := a.store.Get(ctx, id)
		if errors.Is(err, session.ErrNotFound) {
			continue
		}
		if err != nil {
			logger.Error("Loading session failed.", "session", id, "error", err)
			continue
		}
		sctx, _ := ctxlog.With(ctx, "session", id)
		matched, err := wxfeed.Apply(sctx, s, obs)
		if err != nil {
			logger.Warn("Applying observation failed.", "session", id, "error", err)
			continue
		}
		if len(matched) > 0 {
			updated++
		}
	}
	logger.Debug("Observation processed.", "station", obs.Station, "sessions", len(ids), "updated", updated)
}
