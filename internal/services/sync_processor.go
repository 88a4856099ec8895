package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// PendingSyncer retries pending records. InventoryService implements it.
type PendingSyncer interface {
	SyncPending(ctx context.Context, limit int) (SyncResult, error)
}

// SyncProcessorConfig holds configuration for the sync processor
type SyncProcessorConfig struct {
	// PollInterval is how often pending records are scanned (default: 30s)
	PollInterval time.Duration

	// BatchSize is the max number of records retried per scan (default: 50)
	BatchSize int
}

// DefaultSyncProcessorConfig returns sensible defaults
func DefaultSyncProcessorConfig() SyncProcessorConfig {
	return SyncProcessorConfig{
		PollInterval: 30 * time.Second,
		BatchSize:    50,
	}
}

// SyncProcessor periodically retries records that are still pending, and
// on demand when Trigger is called (for example when connectivity returns).
type SyncProcessor struct {
	syncer PendingSyncer
	config SyncProcessorConfig

	mu        sync.Mutex
	running   bool
	stopCh    chan struct{}
	doneCh    chan struct{}
	triggerCh chan struct{}
	last      SyncResult
	lastRun   time.Time
}

func NewSyncProcessor(syncer PendingSyncer, config SyncProcessorConfig) *SyncProcessor {
	return &SyncProcessor{
		syncer:    syncer,
		config:    config,
		triggerCh: make(chan struct{}, 1),
	}
}

// Start begins the processing loop. Returns an error if already running.
func (p *SyncProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("sync processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Sync processor started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize)

	return nil
}

// Stop gracefully stops the processor and waits for completion.
func (p *SyncProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	stopCh, doneCh := p.stopCh, p.doneCh
	p.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Sync processor stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Sync processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	return nil
}

// IsRunning returns whether the processor is currently running
func (p *SyncProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Trigger requests an immediate scan. Requests made while one is already
// queued are coalesced.
func (p *SyncProcessor) Trigger() {
	select {
	case p.triggerCh <- struct{}{}:
	default:
	}
}

// LastResult returns the outcome of the most recent scan.
func (p *SyncProcessor) LastResult() (SyncResult, time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last, p.lastRun
}

func (p *SyncProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	pollTicker := time.NewTicker(p.config.PollInterval)
	defer pollTicker.Stop()

	// Process immediately on startup
	p.processBatch(ctx)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-pollTicker.C:
			p.processBatch(ctx)
		case <-p.triggerCh:
			p.processBatch(ctx)
		}
	}
}

// ProcessNow runs a single scan synchronously.
func (p *SyncProcessor) ProcessNow(ctx context.Context) SyncResult {
	return p.processBatch(ctx)
}

func (p *SyncProcessor) processBatch(ctx context.Context) SyncResult {
	res, err := p.syncer.SyncPending(ctx, p.config.BatchSize)
	if err != nil {
		slog.ErrorContext(ctx, "Pending sync scan failed", "error", err)
	}
	if res.Failed > 0 {
		slog.WarnContext(ctx, "Some records are still pending",
			"attempted", res.Attempted, "failed", res.Failed)
	}

	p.mu.Lock()
	p.last = res
	p.lastRun = time.Now()
	p.mu.Unlock()
	return res
}
