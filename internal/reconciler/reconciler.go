// Package reconciler keeps a board in step with the dispatch snapshot.
package reconciler

import (
	"context"
	"fmt"
	"time"

	"github.com/imrishuroy/dispatch-board/internal/board"
	"github.com/imrishuroy/dispatch-board/internal/dispatch"
	"github.com/imrishuroy/dispatch-board/internal/logger"
	"github.com/imrishuroy/dispatch-board/internal/metrics"
)

// DefaultInterval is used when no interval is configured.
const DefaultInterval = 5 * time.Second

// SnapshotFetcher reads the active set. A nil slice with a nil error means the
// server had nothing to report.
type SnapshotFetcher interface {
	FetchSnapshot(ctx context.Context) ([]dispatch.Record, error)
}

// Notice is a short-lived message for the operator.
type Notice struct {
	Dashboard string
	Message   string
	Err       error
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithLogger sets the logger; the default discards output.
func WithLogger(l logger.Logger) Option {
	return func(r *Reconciler) { r.log = l }
}

// WithMetrics records every poll outcome on m.
func WithMetrics(m metrics.PollRecorder) Option {
	return func(r *Reconciler) { r.metrics = m }
}

// WithNotice sets the callback invoked when a poll fails.
func WithNotice(fn func(Notice)) Option {
	return func(r *Reconciler) { r.onNotice = fn }
}

// WithOnChange sets the callback invoked after a merge created cards.
func WithOnChange(fn func(added int)) Option {
	return func(r *Reconciler) { r.onChange = fn }
}

// Reconciler polls a SnapshotFetcher and merges the result into a Board.
type Reconciler struct {
	name     string
	fetcher  SnapshotFetcher
	board    *board.Board
	interval time.Duration

	log      logger.Logger
	metrics  metrics.PollRecorder
	onNotice func(Notice)
	onChange func(int)
}

// New builds a Reconciler for the named dashboard. A non-positive interval
// falls back to DefaultInterval.
func New(name string, f SnapshotFetcher, b *board.Board, interval time.Duration, opts ...Option) *Reconciler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	r := &Reconciler{
		name:     name,
		fetcher:  f,
		board:    b,
		interval: interval,
		log:      logger.NopLogger{},
		metrics:  metrics.NopSink{},
		onNotice: func(Notice) {},
		onChange: func(int) {},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

type result struct {
	records []dispatch.Record
	err     error
}

// Run polls immediately and then once per interval until ctx is cancelled.
// A tick that fires while a fetch is still outstanding is skipped. Results
// that arrive after cancellation are dropped without touching the board.
func (r *Reconciler) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	results := make(chan result, 1)
	inFlight := false
	start := func() {
		inFlight = true
		go func() {
			recs, err := r.fetcher.FetchSnapshot(ctx)
			results <- result{records: recs, err: err}
		}()
	}

	r.log.Infof("dashboard %s polling every %s", r.name, r.interval)
	start()
	for {
		select {
		case <-ctx.Done():
			r.log.Infof("dashboard %s stopped", r.name)
			return nil
		case res := <-results:
			inFlight = false
			if ctx.Err() != nil {
				return nil
			}
			r.apply(res.records, res.err)
		case <-ticker.C:
			if inFlight {
				r.log.Debugf("dashboard %s: previous poll still running, skipping tick", r.name)
				continue
			}
			start()
		}
	}
}

// Poll performs a single synchronous round-trip and returns the number of
// cards it created.
func (r *Reconciler) Poll(ctx context.Context) (int, error) {
	recs, err := r.fetcher.FetchSnapshot(ctx)
	return r.apply(recs, err), err
}

func (r *Reconciler) apply(recs []dispatch.Record, err error) int {
	if err != nil {
		r.log.Warnf("dashboard %s: poll failed: %v", r.name, err)
		_ = r.metrics.RecordPoll(r.name, metrics.PollError, 0)
		r.onNotice(Notice{Dashboard: r.name, Message: fmt.Sprintf("poll failed: %v", err), Err: err})
		return 0
	}
	if recs == nil {
		_ = r.metrics.RecordPoll(r.name, metrics.PollNoContent, 0)
		return 0
	}

	added := r.board.Merge(recs)
	_ = r.metrics.RecordPoll(r.name, metrics.PollOK, added)
	if added > 0 {
		r.log.Debugf("dashboard %s: %d new cards", r.name, added)
		r.onChange(added)
	}
	return added
}
