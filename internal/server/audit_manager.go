package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/orderdash/internal/config"
	"gitlab.ozon.dev/pupkingeorgij/orderdash/internal/metrics"
)

const sinkWriteTimeout = 10 * time.Second

// AuditSink receives the batches assembled by the AuditManager. workerID is
// -1 when the batch bypassed the worker pool.
type AuditSink interface {
	WriteBatch(ctx context.Context, workerID int, batch []AuditLogEntry) error
}

// RecordPublisher is satisfied by the kafka publisher.
type RecordPublisher interface {
	Publish(ctx context.Context, id uuid.UUID, record interface{}) error
}

// PublisherSink publishes every entry as its own record keyed by the entry id.
type PublisherSink struct {
	publisher RecordPublisher
}

func NewPublisherSink(publisher RecordPublisher) *PublisherSink {
	return &PublisherSink{publisher: publisher}
}

func (s *PublisherSink) WriteBatch(ctx context.Context, _ int, batch []AuditLogEntry) error {
	for _, entry := range batch {
		if err := s.publisher.Publish(ctx, entry.ID, entry); err != nil {
			return fmt.Errorf("failed to publish audit entry %s: %w", entry.ID, err)
		}
	}
	return nil
}

// LogSink writes batches to the logger.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) WriteBatch(_ context.Context, workerID int, batch []AuditLogEntry) error {
	for _, entry := range batch {
		s.logger.Info("audit",
			zap.Int("worker", workerID),
			zap.Stringer("id", entry.ID),
			zap.String("handler", entry.Handler),
			zap.String("method", entry.Method),
			zap.String("path", entry.Path),
			zap.Int("status_code", entry.StatusCode),
			zap.String("old_status", entry.OldStatus),
			zap.String("new_status", entry.NewStatus),
		)
	}
	return nil
}

// AuditManager batches audit entries by size or timeout and hands the
// batches to a pool of workers writing to the sink.
type AuditManager struct {
	workerCount int
	batchSize   int
	timeout     time.Duration
	sink        AuditSink
	fallback    *LogSink
	logger      *zap.Logger

	inputChan  chan AuditLogEntry
	batchChan  chan []AuditLogEntry
	shutdownCh chan struct{}
	once       sync.Once

	// closeMu orders LogEntry sends against shutdown: once closed is set no
	// entry reaches inputChan, so the aggregator's final drain sees them all.
	closeMu sync.RWMutex
	closed  bool

	wg           sync.WaitGroup
	pendingMu    sync.Mutex
	pendingCount int
}

func NewAuditManager(cfg config.AuditConfig, sink AuditSink, logger *zap.Logger) *AuditManager {
	return &AuditManager{
		workerCount: cfg.Workers,
		batchSize:   cfg.BatchSize,
		timeout:     cfg.BatchTimeout,
		sink:        sink,
		fallback:    NewLogSink(logger),
		logger:      logger,
		inputChan:   make(chan AuditLogEntry, cfg.Workers*cfg.BatchSize*2),
		batchChan:   make(chan []AuditLogEntry, cfg.Workers*2),
		shutdownCh:  make(chan struct{}),
	}
}

func (m *AuditManager) Start(ctx context.Context) {
	m.logger.Info("starting audit manager", zap.Int("workers", m.workerCount), zap.Int("batch_size", m.batchSize))
	m.wg.Add(1)
	go m.runAggregator()

	for i := 0; i < m.workerCount; i++ {
		m.wg.Add(1)
		go m.runWorker(ctx, i)
	}

	go m.monitorShutdown(ctx)
}

// Shutdown stops accepting batches and waits, bounded by ctx, for the workers
// to flush what was queued. It is safe to call more than once.
func (m *AuditManager) Shutdown(ctx context.Context) {
	m.once.Do(func() {
		m.logger.Info("initiating audit manager shutdown")
		m.closeMu.Lock()
		m.closed = true
		close(m.shutdownCh)
		m.closeMu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.logger.Debug("audit manager shutdown completed")
	case <-ctx.Done():
		m.logger.Warn("audit manager shutdown interrupted", zap.Int("pending", m.Pending()))
	}
}

func (m *AuditManager) monitorShutdown(ctx context.Context) {
	select {
	case <-ctx.Done():
		m.logger.Debug("audit manager context cancelled")
		m.Shutdown(context.Background())
	case <-m.shutdownCh:
	}
}

// LogEntry queues entry for the next batch. Entries that cannot be queued
// because the caller gave up or the manager is shutting down are written
// straight to the log.
func (m *AuditManager) LogEntry(ctx context.Context, entry AuditLogEntry) {
	m.updatePendingCount(1)

	m.closeMu.RLock()
	defer m.closeMu.RUnlock()

	if m.closed {
		m.emergencyLog(entry)
		return
	}

	select {
	case m.inputChan <- entry:
	case <-ctx.Done():
		m.emergencyLog(entry)
	}
}

// Pending is the number of entries accepted but not yet handed to a worker.
func (m *AuditManager) Pending() int {
	m.pendingMu.Lock()
	defer m.pendingMu.Unlock()
	return m.pendingCount
}

// runAggregator stops only on shutdownCh; a cancelled ctx reaches it through
// monitorShutdown.
func (m *AuditManager) runAggregator() {
	defer m.wg.Done()

	var (
		batch    []AuditLogEntry
		timer    *time.Timer
		timeoutC <-chan time.Time
	)

	stopTimer := func() {
		if timer != nil {
			timer.Stop()
		}
		timeoutC = nil
	}

	defer func() {
		stopTimer()
		// whatever was queued before shutdown still goes out
		for drained := false; !drained; {
			select {
			case entry := <-m.inputChan:
				batch = append(batch, entry)
			default:
				drained = true
			}
		}
		if len(batch) > 0 {
			m.dispatchBatch(batch)
		}
		close(m.batchChan)
	}()

	for {
		select {
		case entry := <-m.inputChan:
			batch = append(batch, entry)
			if len(batch) >= m.batchSize {
				stopTimer()
				m.dispatchBatch(batch)
				batch = nil
			} else if len(batch) == 1 {
				timer = time.NewTimer(m.timeout)
				timeoutC = timer.C
			}

		case <-timeoutC:
			timeoutC = nil
			m.dispatchBatch(batch)
			batch = nil

		case <-m.shutdownCh:
			return
		}
	}
}

func (m *AuditManager) dispatchBatch(batch []AuditLogEntry) {
	batchCopy := make([]AuditLogEntry, len(batch))
	copy(batchCopy, batch)

	select {
	case m.batchChan <- batchCopy:
	default:
		metrics.AuditEntriesDropped.Add(float64(len(batchCopy)))
		_ = m.fallback.WriteBatch(context.Background(), -1, batchCopy)
	}
	m.updatePendingCount(-len(batch))
}

func (m *AuditManager) runWorker(ctx context.Context, id int) {
	defer m.wg.Done()
	m.logger.Debug("audit worker started", zap.Int("worker", id))

	// batchChan is closed by the aggregator once it stops, so ranging drains
	// it on shutdown as well
	for batch := range m.batchChan {
		m.writeBatch(ctx, id, batch)
	}
	m.logger.Debug("audit worker exiting", zap.Int("worker", id))
}

func (m *AuditManager) writeBatch(ctx context.Context, workerID int, batch []AuditLogEntry) {
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sinkWriteTimeout)
	defer cancel()

	if err := m.sink.WriteBatch(writeCtx, workerID, batch); err != nil {
		m.logger.Error("failed to write audit batch", zap.Int("worker", workerID), zap.Int("size", len(batch)), zap.Error(err))
		metrics.AuditEntriesDropped.Add(float64(len(batch)))
		_ = m.fallback.WriteBatch(writeCtx, workerID, batch)
	}
}

func (m *AuditManager) emergencyLog(entry AuditLogEntry) {
	metrics.AuditEntriesDropped.Inc()
	_ = m.fallback.WriteBatch(context.Background(), -1, []AuditLogEntry{entry})
	m.updatePendingCount(-1)
}

func (m *AuditManager) updatePendingCount(delta int) {
	m.pendingMu.Lock()
	defer m.pendingMu.Unlock()
	m.pendingCount += delta
}
