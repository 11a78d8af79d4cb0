// Package watcher polls the search form for visits matching a preference
// and pushes every new match to a notifier.
package watcher

import (
	"context"
	"time"

	"go.uber.org/zap"

	"mediplanner/medicover"
	"mediplanner/notify"
)

// Searcher is the slice of the search form the watcher needs.
type Searcher interface {
	Search(ctx context.Context) error
	Results() []medicover.AvailableVisit
}

// Watcher repeatedly re-runs the current search and reports matching
// visits. It runs as a single blocking loop; there is no background
// goroutine to manage, cancelling the context stops it.
type Watcher struct {
	form     Searcher
	pref     medicover.VisitPreference
	notifier notify.Notifier
	interval time.Duration
	logger   *zap.Logger

	// Visit ids already reported; a visit is announced once per process.
	seen map[int]struct{}
}

// Config configures a Watcher.
type Config struct {
	Form       Searcher
	Preference medicover.VisitPreference
	Notifier   notify.Notifier
	Interval   time.Duration
	Logger     *zap.Logger
}

// New creates a watcher. Intervals below one second are raised to the
// default of one minute.
func New(cfg Config) *Watcher {
	interval := cfg.Interval
	if interval < time.Second {
		interval = time.Minute
	}
	return &Watcher{
		form:     cfg.Form,
		pref:     cfg.Preference,
		notifier: cfg.Notifier,
		interval: interval,
		logger:   cfg.Logger,
		seen:     make(map[int]struct{}),
	}
}

// Run polls immediately and then on every tick until ctx is cancelled.
// A failed poll is logged and retried on the next tick only.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Info("watch started", zap.Duration("interval", w.interval))

	w.poll(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watch stopped")
			return nil
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

func (w *Watcher) poll(ctx context.Context) {
	if err := w.form.Search(ctx); err != nil {
		w.logger.Warn("watch poll failed", zap.Error(err))
		return
	}

	for _, visit := range w.form.Results() {
		if !w.pref.Matches(visit) {
			continue
		}
		if _, ok := w.seen[visit.ID]; ok {
			continue
		}
		w.seen[visit.ID] = struct{}{}

		w.logger.Info("matching visit found", zap.Int("visitID", visit.ID), zap.Time("date", visit.Date))
		if err := w.notifier.Notify("Matching visit: " + visit.String()); err != nil {
			w.logger.Warn("failed to deliver notification", zap.Error(err))
		}
	}
}
