// Package service provides the core service that runs the audience
// aggregation pipeline over batches of uploaded documents.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/persona/internal/adapters/enrich"
	docqueue "github.com/okian/persona/internal/adapters/mq/queue"
	workerpool "github.com/okian/persona/internal/adapters/mq/worker"
	repository "github.com/okian/persona/internal/adapters/repository"
	"github.com/okian/persona/internal/domain/dedupe"
	"github.com/okian/persona/internal/domain/education"
	"github.com/okian/persona/internal/domain/geo"
	"github.com/okian/persona/internal/domain/interest"
	"github.com/okian/persona/internal/domain/model"
	"github.com/okian/persona/internal/domain/parse"
	"github.com/okian/persona/internal/domain/report"
	"github.com/okian/persona/internal/domain/socioclass"
	"github.com/okian/persona/pkg/logger"
	"github.com/okian/persona/pkg/metrics"
)

// Service wires the document queue, worker pool, derivation pipeline and
// session report store. Reference tables are handed in before Start and
// never mutated afterwards, so workers read them unsynchronized.
type Service struct {
	mu sync.RWMutex

	// Core components
	store    repository.Store
	deduper  dedupe.Deduper
	docQueue docqueue.Queue
	pool     *workerpool.Pool
	pipe     *pipeline

	// Configuration
	workerCount    int
	queueSize      int
	dedupeSize     int
	countryFilter  string
	topInterests   int
	topCities      int
	postSampleSize int
	eduStdDev      float64

	// Reference data, nil/empty when the corresponding load failed.
	classTable   socioclass.Table
	eduTable     education.Table
	translations interest.MapTranslator

	fetcher enrich.Fetcher

	// Batch tracking: one batch runs at a time; workers signal completion
	// per document through the onDone hook. batchGen is the admission
	// generation; documents tagged with an older generation belong to an
	// abandoned batch and are discarded on completion. genMu pairs the
	// session wipe in RunBatch with the generation check in the sink.
	batchMu  sync.Mutex
	batchWG  *sync.WaitGroup
	batchGen atomic.Uint64
	genMu    sync.RWMutex

	// State
	started bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the document queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the duplicate-document cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCountryFilter restricts city normalization to one country code.
func WithCountryFilter(code string) Option {
	return func(s *Service) {
		s.countryFilter = code
	}
}

// WithTopInterests caps the interest ranking per influencer.
func WithTopInterests(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.topInterests = n
		}
	}
}

// WithTopCities caps the ranked city list per influencer.
func WithTopCities(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.topCities = n
		}
	}
}

// WithPostSampleSize caps how many recent posts feed the dispersion score.
func WithPostSampleSize(n int) Option {
	return func(s *Service) {
		s.postSampleSize = n
	}
}

// WithEducationStdDev overrides the education model spread.
func WithEducationStdDev(sigma float64) Option {
	return func(s *Service) {
		if sigma > 0 {
			s.eduStdDev = sigma
		}
	}
}

// WithClassTable supplies the city -> class-mix reference table.
func WithClassTable(t socioclass.Table) Option {
	return func(s *Service) {
		s.classTable = t
	}
}

// WithEducationTable supplies the (city, band, gender) -> years table.
func WithEducationTable(t education.Table) Option {
	return func(s *Service) {
		s.eduTable = t
	}
}

// WithTranslations supplies the interest translation table.
func WithTranslations(t interest.MapTranslator) Option {
	return func(s *Service) {
		s.translations = t
	}
}

// WithFetcher supplies the live profile-metrics fetcher.
func WithFetcher(f enrich.Fetcher) Option {
	return func(s *Service) {
		s.fetcher = f
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:    runtime.NumCPU() * 2,
		queueSize:      1024,
		dedupeSize:     10_000,
		topInterests:   interest.DefaultLimit,
		topCities:      5,
		postSampleSize: 12,
		eduStdDev:      3,
		fetcher:        enrich.Disabled{},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting audience pipeline service...")

	s.store = repository.NewMemStore()
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.docQueue = docqueue.NewInMemoryQueue(
		docqueue.WithCapacity(s.queueSize),
		docqueue.WithBufferSize(s.queueSize),
	)

	geoOpts := []geo.Option{}
	if s.countryFilter != "" {
		geoOpts = append(geoOpts, geo.WithCountryFilter(s.countryFilter))
	}

	s.pipe = &pipeline{
		parser:         parse.NewParser(),
		normalizer:     geo.NewNormalizer(geoOpts...),
		translator:     s.translations,
		fetcher:        s.fetcher,
		topInterests:   s.topInterests,
		topCities:      s.topCities,
		postSampleSize: s.postSampleSize,
	}
	if len(s.classTable) > 0 {
		s.pipe.classAgg = socioclass.NewAggregator(s.classTable)
	} else {
		s.logger.Warn(ctx, "class-mix reference table missing; branch disabled for this session")
	}
	if len(s.eduTable) > 0 {
		s.pipe.eduEst = education.NewEstimator(s.eduTable, education.WithStdDev(s.eduStdDev))
	} else {
		s.logger.Warn(ctx, "education reference table missing; branch disabled for this session")
	}

	s.pool = workerpool.NewPool(s.workerCount, s.docQueue, s.pipe, &batchSink{svc: s},
		workerpool.WithOnDone(s.documentDone),
	)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "audience pipeline service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("classCities", len(s.classTable)),
		logger.Int("educationRows", len(s.eduTable)),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping audience pipeline service...")

	if s.docQueue != nil {
		_ = s.docQueue.Close()
	}
	if s.pool != nil {
		_ = s.pool.Shutdown(ctx)
	}

	s.started = false
	s.logger.Info(ctx, "audience pipeline service stopped")
}

// RunBatch processes one batch of uploaded documents and returns the fresh
// report. The previous session's rows are discarded wholesale. Duplicate
// documents (same profile id) within the batch are dropped, first one wins.
// One batch runs at a time.
func (s *Service) RunBatch(ctx context.Context, docs []model.Document) (*report.Report, error) {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return nil, fmt.Errorf("service not started")
	}

	s.batchMu.Lock()
	defer s.batchMu.Unlock()

	start := time.Now()
	metrics.UpdateBatchSize(len(docs))

	// Fresh session: bump the admission generation, then clear previous
	// results and admission records. The lock keeps the sink from storing
	// a leftover row between the wipe and the generation check.
	s.genMu.Lock()
	gen := s.batchGen.Add(1)
	s.store.ReplaceAll(ctx, nil)
	s.deduper.Reset(ctx)
	s.genMu.Unlock()

	var wg sync.WaitGroup
	s.setBatchWG(&wg)
	defer s.setBatchWG(nil)

	for _, doc := range docs {
		doc.Batch = gen
		key := s.admissionKey(doc)
		if s.deduper.SeenAndRecord(ctx, key) {
			metrics.RecordDocumentDuplicate()
			s.logger.Warn(ctx, "duplicate document dropped",
				logger.String("source", doc.SourceName),
				logger.String("profile_id", key),
			)
			continue
		}

		wg.Add(1)
		if !s.docQueue.Enqueue(ctx, doc) {
			wg.Done()
			s.deduper.Unrecord(ctx, key)
			s.logger.Error(ctx, "enqueue failed, document skipped",
				logger.String("source", doc.SourceName),
			)
		}
	}

	// Wait for the workers to drain the batch, honoring cancellation.
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return nil, fmt.Errorf("batch interrupted: %w", ctx.Err())
	}

	rep := report.New(s.store.Rows(ctx))
	metrics.RecordBatchDuration(float64(time.Since(start).Milliseconds()))

	s.logger.Info(ctx, "batch complete",
		logger.Int("documents", len(docs)),
		logger.Int("rows", len(rep.Rows)),
	)
	return rep, nil
}

// Report returns the current session's report snapshot.
func (s *Service) Report(ctx context.Context) *report.Report {
	return report.New(s.store.Rows(ctx))
}

// Row returns one influencer's summary row from the session store.
func (s *Service) Row(ctx context.Context, profileID string) (model.SummaryRow, error) {
	return s.store.Get(ctx, profileID)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
	}

	if s.started {
		stats["queueLength"] = s.docQueue.Len(ctx)
		stats["storedRows"] = s.store.Count(ctx)
	}

	return stats
}

// documentDone is the per-document completion hook run by workers.
func (s *Service) documentDone(doc workerpool.Document, err error) {
	// Leftovers of an abandoned batch must not signal the current batch's
	// WaitGroup or unrecord keys in the fresh admission set. The generation
	// is stable here because batchMu serializes batches.
	if doc.Batch != s.batchGen.Load() {
		return
	}
	if err != nil {
		// The document never produced a row; allow a corrected re-upload
		// within the same session.
		s.deduper.Unrecord(context.Background(), s.admissionKey(doc))
	}
	s.signalBatch()
}

// signalBatch signals the active batch, if any.
func (s *Service) signalBatch() {
	s.mu.RLock()
	wg := s.batchWG
	s.mu.RUnlock()
	if wg != nil {
		wg.Done()
	}
}

func (s *Service) setBatchWG(wg *sync.WaitGroup) {
	s.mu.Lock()
	s.batchWG = wg
	s.mu.Unlock()
}

// batchSink stores finished rows in the session store, dropping rows whose
// admission generation has been superseded. Holding the read lock across the
// check and the write pairs with RunBatch wiping the store under the write
// lock, so a stale row can never land after the wipe.
type batchSink struct {
	svc *Service
}

func (b *batchSink) Put(ctx context.Context, doc workerpool.Document, row model.SummaryRow) error {
	b.svc.genMu.RLock()
	defer b.svc.genMu.RUnlock()
	if doc.Batch != b.svc.batchGen.Load() {
		return nil
	}
	return b.svc.store.Put(ctx, row)
}

// admissionKey derives the dedupe key for a document before parsing: the
// filename-pattern profile id when present, else the full source name.
func (s *Service) admissionKey(doc model.Document) string {
	if id := parse.SourceProfileID(doc.SourceName); id != "" {
		return id
	}
	return doc.SourceName
}
