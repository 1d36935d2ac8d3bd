// Package errorlog buffers server-side error reports and writes them to the
// database in batches. Repeats of the same error are suppressed through a
// Redis SETNX dedupe key so a crash loop cannot flood the error_logs table.
package errorlog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync"
	"time"

	"github.com/quizforge/quiz-service/internal/cache"
	"github.com/quizforge/quiz-service/internal/models"
	"github.com/quizforge/quiz-service/internal/repositories"
)

const (
	defaultBatchSize     = 50
	defaultFlushInterval = 10 * time.Second
	defaultQueueCapacity = 1000
	dedupeKeyPrefix      = "errorlog:seen:"
	dedupeWindow         = 24 * time.Hour
	flushTimeout         = 5 * time.Second
)

// Config tunes the batcher; zero values fall back to defaults.
type Config struct {
	BatchSize     int
	FlushInterval time.Duration
	QueueCapacity int
}

// Batcher collects error reports on a bounded queue and flushes them when the
// batch fills or the timer fires. Report never blocks the caller: when the
// queue is full the entry is dropped and counted.
type Batcher struct {
	repo   repositories.ErrorLogRepository
	cache  cache.CacheService
	logger *slog.Logger

	batchSize     int
	flushInterval time.Duration

	queue   chan *models.ErrorLog
	done    chan struct{}
	wg      sync.WaitGroup
	stopped sync.Once

	mu      sync.Mutex
	dropped uint64
}

func NewBatcher(repo repositories.ErrorLogRepository, cacheService cache.CacheService, logger *slog.Logger, cfg Config) *Batcher {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = defaultFlushInterval
	}
	if cfg.QueueCapacity <= 0 {
		cfg.QueueCapacity = defaultQueueCapacity
	}

	return &Batcher{
		repo:          repo,
		cache:         cacheService,
		logger:        logger,
		batchSize:     cfg.BatchSize,
		flushInterval: cfg.FlushInterval,
		queue:         make(chan *models.ErrorLog, cfg.QueueCapacity),
		done:          make(chan struct{}),
	}
}

// Start launches the background flush loop
func (b *Batcher) Start() {
	b.wg.Add(1)
	go b.run()
}

// Stop drains the queue, flushes the remainder and stops the loop
func (b *Batcher) Stop() {
	b.stopped.Do(func() {
		close(b.done)
	})
	b.wg.Wait()
}

// Report enqueues one error occurrence. Duplicate fingerprints within the
// dedupe window are discarded before they reach the queue.
func (b *Batcher) Report(ctx context.Context, source string, err error, stackTrace string) {
	if err == nil {
		return
	}

	entry := &models.ErrorLog{
		Source:      source,
		Message:     err.Error(),
		StackTrace:  stackTrace,
		Fingerprint: Fingerprint(source, err.Error()),
		CreatedAt:   time.Now(),
	}

	if !b.firstSeen(ctx, entry.Fingerprint) {
		return
	}

	select {
	case b.queue <- entry:
	default:
		b.mu.Lock()
		b.dropped++
		dropped := b.dropped
		b.mu.Unlock()
		b.logger.Warn("Error log queue full, dropping entry", "source", source, "dropped_total", dropped)
	}
}

// Dropped returns how many entries were discarded due to a full queue
func (b *Batcher) Dropped() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

// Fingerprint derives the dedupe key for an error occurrence
func Fingerprint(source, message string) string {
	sum := sha256.Sum256([]byte(source + "\x00" + message))
	return hex.EncodeToString(sum[:])
}

// firstSeen reports whether this fingerprint is new within the dedupe window.
// Redis failures fail open: the entry is logged rather than lost.
func (b *Batcher) firstSeen(ctx context.Context, fingerprint string) bool {
	ok, err := b.cache.SetNX(ctx, dedupeKeyPrefix+fingerprint, 1, dedupeWindow)
	if err != nil {
		b.logger.Warn("Error log dedupe check failed", "error", err)
		return true
	}
	return ok
}

func (b *Batcher) run() {
	defer b.wg.Done()

	ticker := time.NewTicker(b.flushInterval)
	defer ticker.Stop()

	batch := make([]*models.ErrorLog, 0, b.batchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		if err := b.repo.CreateBatch(ctx, batch); err != nil {
			b.logger.Error("Failed to flush error log batch", "count", len(batch), "error", err)
		}
		cancel()
		batch = make([]*models.ErrorLog, 0, b.batchSize)
	}

	for {
		select {
		case entry := <-b.queue:
			batch = append(batch, entry)
			if len(batch) >= b.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-b.done:
			// Drain whatever is already queued before the final flush
			for {
				select {
				case entry := <-b.queue:
					batch = append(batch, entry)
					if len(batch) >= b.batchSize {
						flush()
					}
					continue
				default:
				}
				break
			}
			flush()
			return
		}
	}
}
