package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mizulab/dosha-risk-etl/internal/domain"
	"github.com/mizulab/dosha-risk-etl/internal/grib"
	"github.com/mizulab/dosha-risk-etl/internal/observability"
)

// BatchExtractor hands the pipeline up to batchSize new raw records.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawRecord, error)
}

// Transformer decodes one raw record into its stored form.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawRecord) (domain.DecodedRecord, error)
}

// BatchLoader appends decoded records to the destination store.
type BatchLoader interface {
	LoadBatch(ctx context.Context, recs []domain.DecodedRecord) error
}

// Notifier publishes summaries for records that reached the store.
type Notifier interface {
	NotifyBatch(ctx context.Context, recs []domain.DecodedRecord) error
}

// Pipeline orchestrates the extract-decode-store loop. In one-shot mode it
// drains the supplied directories and returns; in watch mode it keeps polling
// for new record files until the context is cancelled.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	notifier    Notifier // nil when notifications are disabled
	logger      *slog.Logger
	metrics     *observability.Metrics
	clock       clockwork.Clock

	batchSize    int
	watch        bool
	pollInterval time.Duration

	ready atomic.Bool
}

// Options control the loop's batching and polling behavior.
type Options struct {
	BatchSize    int
	Watch        bool
	PollInterval time.Duration

	// Clock is the time source for poll waits; nil means the real clock.
	Clock clockwork.Clock
}

// New creates a Pipeline with the given stages and observability. notifier
// may be nil.
func New(e BatchExtractor, t Transformer, l BatchLoader, n Notifier, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Pipeline {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Pipeline{
		extractor:    e,
		transformer:  t,
		loader:       l,
		notifier:     n,
		logger:       logger,
		metrics:      metrics,
		clock:        clock,
		batchSize:    opts.BatchSize,
		watch:        opts.Watch,
		pollInterval: opts.PollInterval,
	}
}

// CheckReadiness returns nil once the pipeline has stored at least one
// record, or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not stored any records yet")
	}
	return nil
}

// Ready reports whether at least one record has been stored.
func (p *Pipeline) Ready() bool { return p.ready.Load() }

// Run executes the batch loop until the input is drained (one-shot mode) or
// the context is cancelled (watch mode).
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize, "watch", p.watch)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	// Keeps retry storms short while avoiding tight loops on a sick store
	// or an unreadable directory.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		default:
		}

		done, keepGoing := p.processBatch(ctx, &backoff, maxBackoff)
		if !keepGoing {
			return nil
		}
		if done {
			if !p.watch {
				p.logger.Info("all record files processed")
				return nil
			}
			if !p.waitForPoll(ctx) {
				return nil
			}
		}
	}
}

// processBatch runs one extract-decode-store cycle. done is true when no new
// files were found; keepGoing is false when the pipeline should stop.
func (p *Pipeline) processBatch(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) (done, keepGoing bool) {
	start := time.Now()

	rawBatch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false, false
		}
		p.logger.Error("extract batch failed", "error", err)
		return false, p.backoffOrStop(ctx, backoff, maxBackoff)
	}

	if len(rawBatch) == 0 {
		return true, ctx.Err() == nil
	}

	p.metrics.RecordsDiscovered.Add(float64(len(rawBatch)))
	p.metrics.BatchSize.Observe(float64(len(rawBatch)))
	*backoff = 200 * time.Millisecond

	stored, ok := p.transformAndLoad(ctx, rawBatch, backoff, maxBackoff)
	if !ok {
		return false, false
	}

	if stored > 0 {
		p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
		p.ready.Store(true)
	}
	return false, true
}

// transformAndLoad decodes each record in the batch, appends the successes to
// the store, commits them, and publishes notifications. Decode failures are
// logged and skipped (one corrupt file must not stall the batch), while
// store failures are retried with backoff, since losing decoded records is
// worse than waiting. Returns the number of stored records and false if the
// pipeline should stop.
func (p *Pipeline) transformAndLoad(ctx context.Context, rawBatch []domain.RawRecord, backoff *time.Duration, maxBackoff time.Duration) (int, bool) {
	decoded := make([]domain.DecodedRecord, 0, len(rawBatch))
	committed := make([]domain.RawRecord, 0, len(rawBatch))

	for _, raw := range rawBatch {
		rec, err := p.transformer.Transform(ctx, raw)
		if err != nil {
			p.logger.Warn("decode failed, skipping record",
				"error", err,
				"path", raw.Path,
				"observed", raw.Observed.String(),
			)
			p.metrics.DecodeErrors.WithLabelValues(grib.ErrorKind(err)).Inc()
			p.commitRecord(ctx, raw)
			continue
		}
		p.metrics.RecordsDecoded.Inc()
		decoded = append(decoded, rec)
		committed = append(committed, raw)
	}

	if len(decoded) == 0 {
		return 0, true
	}

	for {
		err := p.loader.LoadBatch(ctx, decoded)
		if err == nil {
			break
		}
		p.logger.Error("store batch failed", "error", err, "batch_size", len(decoded))
		if !p.backoffOrStop(ctx, backoff, maxBackoff) {
			return 0, false
		}
	}

	p.metrics.RecordsStored.Add(float64(len(decoded)))

	for _, raw := range committed {
		p.commitRecord(ctx, raw)
	}

	p.notify(ctx, decoded)

	return len(decoded), true
}

// notify publishes summaries best-effort; a notification failure never
// unwinds a store append.
func (p *Pipeline) notify(ctx context.Context, recs []domain.DecodedRecord) {
	if p.notifier == nil {
		return
	}
	if err := p.notifier.NotifyBatch(ctx, recs); err != nil {
		p.logger.Warn("notify failed", "error", err, "batch_size", len(recs))
		p.metrics.NotifyErrors.Inc()
		return
	}
	p.metrics.NotificationsPublished.Add(float64(len(recs)))
}

// waitForPoll sleeps one poll interval on the injected clock. Returns false
// if the context was cancelled while waiting.
func (p *Pipeline) waitForPoll(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-p.clock.After(p.pollInterval):
		return true
	}
}

// backoffOrStop checks for context cancellation, sleeps with the current
// backoff, and advances the backoff. Returns false if the pipeline should stop.
func (p *Pipeline) backoffOrStop(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !sleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = nextBackoff(*backoff, maxBackoff)
	return true
}

// commitRecord marks the record as handled if a commit function is available.
func (p *Pipeline) commitRecord(ctx context.Context, raw domain.RawRecord) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit record failed", "error", err, "path", raw.Path)
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
