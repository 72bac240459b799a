package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"bilancio/internal/amqp"
	"bilancio/internal/insight"
)

// ReportCacheWriter persists precomputed report payloads.
type ReportCacheWriter interface {
	SaveReportCache(ctx context.Context, coupleID, period string, periodStart time.Time, payload []byte) error
}

// changeSource delivers transaction change events to a handler. The AMQP
// client satisfies it; tests use a channel-backed fake.
type changeSource interface {
	ConsumeTransactionChanged(ctx context.Context, handler func(*amqp.TransactionChangedMessage) error) error
}

// RefreshProcessorConfig holds configuration for the refresh processor
type RefreshProcessorConfig struct {
	// Periods are the reporting windows rewarmed on every change (default: month)
	Periods []insight.Period

	// ReconnectAttempts is how many times to retry a dropped broker link (default: 10)
	ReconnectAttempts int
}

// DefaultRefreshProcessorConfig returns sensible defaults
func DefaultRefreshProcessorConfig() RefreshProcessorConfig {
	return RefreshProcessorConfig{
		Periods:           []insight.Period{insight.Month},
		ReconnectAttempts: 10,
	}
}

// RefreshProcessor consumes transaction change events and rewarms the report
// cache for the affected couple, so dashboard reads stay cheap.
type RefreshProcessor struct {
	source  changeSource
	reports *ReportService
	cache   ReportCacheWriter
	config  RefreshProcessorConfig

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewRefreshProcessor(
	source changeSource,
	reports *ReportService,
	cache ReportCacheWriter,
	config RefreshProcessorConfig,
) *RefreshProcessor {
	if len(config.Periods) == 0 {
		config.Periods = []insight.Period{insight.Month}
	}
	return &RefreshProcessor{
		source:  source,
		reports: reports,
		cache:   cache,
		config:  config,
	}
}

// Start begins the consume loop. Returns an error if already running.
func (p *RefreshProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("refresh processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Refresh processor started",
		"periods", p.config.Periods)

	return nil
}

// Stop gracefully stops the processor and waits for completion.
func (p *RefreshProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	close(p.stopCh)

	select {
	case <-p.doneCh:
		slog.InfoContext(ctx, "Refresh processor stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Refresh processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	return nil
}

// IsRunning returns whether the processor is currently running
func (p *RefreshProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// runLoop consumes until stopped. A dropped broker link is retried with the
// client's own reconnect backoff; errors retrying cannot fix stop the loop.
func (p *RefreshProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case <-p.stopCh:
			cancel()
		case <-loopCtx.Done():
		}
	}()

	for attempt := 0; ; attempt++ {
		err := p.source.ConsumeTransactionChanged(loopCtx, p.handleMessage)
		if loopCtx.Err() != nil {
			return
		}
		if err != nil {
			slog.ErrorContext(loopCtx, "Consume loop exited", "error", err)
		}

		if client, ok := p.source.(*amqp.Client); ok {
			if !amqp.IsConnectionError(err) {
				slog.ErrorContext(loopCtx, "Consume failed with a non-recoverable error, stopping", "error", err)
				return
			}
			if rerr := client.Reconnect(loopCtx, p.config.ReconnectAttempts); rerr != nil {
				slog.ErrorContext(loopCtx, "Giving up on broker reconnect", "error", rerr)
				return
			}
			continue
		}

		if attempt >= p.config.ReconnectAttempts {
			return
		}
	}
}

// handleMessage recomputes and caches reports for the couple named in the
// event. Errors propagate so the delivery gets requeued.
func (p *RefreshProcessor) handleMessage(msg *amqp.TransactionChangedMessage) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := time.Now()
	for _, period := range p.config.Periods {
		report, err := p.reports.Generate(ctx, msg.CoupleID, string(period), now)
		if err != nil {
			return fmt.Errorf("generate %s report: %w", period, err)
		}

		payload, err := json.Marshal(report)
		if err != nil {
			return fmt.Errorf("marshal %s report: %w", period, err)
		}

		if err := p.cache.SaveReportCache(ctx, msg.CoupleID, string(period), report.StartDate, payload); err != nil {
			return fmt.Errorf("save %s report cache: %w", period, err)
		}
	}

	slog.InfoContext(ctx, "Rewarmed report cache",
		"couple_id", msg.CoupleID,
		"transaction_id", msg.TransactionID,
		"op", msg.Op,
		"periods", len(p.config.Periods))

	return nil
}
