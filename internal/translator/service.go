package translator

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aidarkhanov/nanoid"
	"go.uber.org/zap"

	"lingo-engine/internal/history"
	"lingo-engine/internal/metrics"
	"lingo-engine/internal/shared"
	"lingo-engine/internal/textproc"
	"lingo-engine/internal/vocab"
)

// ResponseCache is the optional response-cache collaborator. Payloads are
// opaque to the cache; the service owns serialization. The redis-backed
// implementation lives in internal/cache.
type ResponseCache interface {
	Get(ctx context.Context, text string) ([]byte, bool)
	Put(ctx context.Context, text string, payload []byte)
}

type Config struct {
	// Workers is the size of the consume pool. Zero means strictly
	// single-threaded operation: preprocessing and inference both run on the
	// caller's goroutine inside Translate.
	Workers int

	// CapacityBytes is the global admission budget. A submission larger than
	// the remaining budget is rejected without any processing.
	CapacityBytes int64

	Vocabs    *vocab.Set
	Processor textproc.Processor // defaults to textproc.LineSegmenter
	NewEngine EngineFactory

	MaxBatchSegments int // defaults to shared.MaxBatchSegments

	// Optional collaborators.
	Cache   ResponseCache
	History *history.Recorder

	Log *zap.SugaredLogger
}

// Service is the admission, batching, and dispatch layer. It owns the worker
// pool, the shared queue, the batcher, the remaining-capacity counter, and
// the request id allocator.
type Service struct {
	log        *zap.SugaredLogger
	vocabs     *vocab.Set
	processor  textproc.Processor
	batcher    *Batcher
	queue      *batchQueue
	numWorkers int

	translators []*Translator
	respCache   ResponseCache
	history     *history.Recorder

	capacity  atomic.Int64
	requestID atomic.Uint64

	mu          sync.Mutex
	liveWorkers int
	wg          sync.WaitGroup
}

// New builds the service and starts its workers. With Workers == 0 a single
// engine is initialized on the calling goroutine; otherwise each worker
// goroutine initializes its own engine before entering the consume loop.
// Requests submitted while a worker is still initializing simply wait in the
// queue.
func New(cfg Config) (*Service, error) {
	if cfg.Workers < 0 {
		return nil, shared.ErrNegativeWorkers
	}
	if cfg.CapacityBytes < 0 {
		return nil, shared.ErrNegativeCapacity
	}
	if cfg.Vocabs == nil || cfg.Vocabs.Len() < 2 {
		return nil, shared.ErrInsufficientVocabs
	}
	if cfg.NewEngine == nil {
		return nil, shared.ErrMissingEngine
	}
	if cfg.Processor == nil {
		cfg.Processor = textproc.LineSegmenter{}
	}
	if cfg.MaxBatchSegments <= 0 {
		cfg.MaxBatchSegments = shared.MaxBatchSegments
	}
	if cfg.Log == nil {
		cfg.Log = zap.NewNop().Sugar()
	}

	s := &Service{
		log:         cfg.Log,
		vocabs:      cfg.Vocabs,
		processor:   cfg.Processor,
		batcher:     NewBatcher(cfg.Log, cfg.MaxBatchSegments),
		queue:       newBatchQueue(shared.QueueDepthFactor * cfg.Workers),
		numWorkers:  cfg.Workers,
		respCache:   cfg.Cache,
		history:     cfg.History,
		liveWorkers: cfg.Workers,
	}
	s.capacity.Store(cfg.CapacityBytes)
	metrics.CapacityBytes.Set(float64(cfg.CapacityBytes))

	if cfg.Workers == 0 {
		tr := newTranslator(0, cfg.NewEngine(0, cfg.Vocabs), cfg.Log)
		if err := tr.Init(); err != nil {
			return nil, err
		}
		s.translators = append(s.translators, tr)
		return s, nil
	}

	for i := range cfg.Workers {
		tr := newTranslator(DeviceID(i), cfg.NewEngine(DeviceID(i), cfg.Vocabs), cfg.Log)
		s.translators = append(s.translators, tr)
		s.wg.Add(1)
		go func(tr *Translator) {
			defer s.wg.Done()
			if err := tr.Init(); err != nil {
				s.log.Errorw("worker failed to initialize engine", "device", tr.device, "error", err)
				metrics.ErrorCount.WithLabelValues("engine_init").Inc()
				// A worker that never consumed must not be owed a poison
				// batch, or Stop could block pushing into a dead pool.
				s.workerFailed()
				return
			}
			tr.ConsumeFrom(s.queue)
		}(tr)
	}
	return s, nil
}

// Translate submits one blob of text and returns its tracker immediately.
// The tracker's future is the only supported completion signal; with workers
// configured nothing is guaranteed to have happened by the time this returns.
func (s *Service) Translate(input string) *RequestTracker {
	return s.translateFrom(input, 0)
}

func (s *Service) translateFrom(input string, lineBegin int) *RequestTracker {
	tracker := newTracker()

	if s.respCache != nil {
		if payload, ok := s.respCache.Get(context.Background(), input); ok {
			var resp Response
			err := json.Unmarshal(payload, &resp)
			if err == nil {
				tracker.setStatus(StatusSuccess)
				tracker.resolve(resp)
				return tracker
			}
			s.log.Warnw("discarding undecodable cache entry", "error", err)
		}
	}

	inputBytes := int64(len(input))
	if inputBytes > s.capacity.Load() {
		// Best-effort guard: the read and the subtract below are not one
		// transaction, so concurrent submissions race for the boundary.
		tracker.setStatus(StatusRejectedMemory)
		tracker.resolve(EmptyResponse())
		metrics.RequestCount.WithLabelValues("rejected_memory").Inc()
		s.log.Infow("submission rejected", "input_bytes", inputBytes, "capacity_bytes", s.capacity.Load())
		return tracker
	}

	remaining := s.capacity.Add(-inputBytes)
	metrics.CapacityBytes.Set(float64(remaining))
	metrics.RequestCount.WithLabelValues("accepted").Inc()
	metrics.RequestBytes.Observe(float64(inputBytes))
	s.log.Infow("capacity adjusted", "capacity_bytes", remaining)

	acceptedAt := time.Now()

	// prepareRequest runs synchronously in 0-worker mode and inside the
	// fire-and-forget producer task otherwise.
	prepareRequest := func() {
		segments, ranges := s.processor.Process(input)
		publicID, _ := nanoid.Generate(shared.PublicIDAlphabet, shared.PublicIDLength)
		id := s.requestID.Add(1)

		// req is assigned below, before the batcher can invoke resolve.
		var req *Request
		resolve := tracker.resolve
		if s.respCache != nil {
			resolve = func(resp Response) {
				// Only genuine completions are written back: engine failures
				// end in empty output that must not shadow a later retry.
				if tracker.Status() == StatusSuccess && !req.Failed() {
					if payload, err := json.Marshal(resp); err == nil {
						go s.respCache.Put(context.Background(), input, payload)
					}
				}
				tracker.resolve(resp)
			}
		}

		req = newRequest(id, publicID, lineBegin, shared.DefaultNice,
			s.vocabs, input, segments, ranges, resolve)
		tracker.track(req)

		req.OnComplete(func() {
			tracker.setStatus(StatusSuccess)
			c := s.capacity.Add(inputBytes)
			metrics.CapacityBytes.Set(float64(c))
			s.log.Infow("capacity adjusted", "capacity_bytes", c)
		})
		if s.history != nil {
			req.OnComplete(func() {
				s.history.Record(history.Entry{
					RequestID:  id,
					PublicID:   publicID,
					InputBytes: inputBytes,
					Segments:   len(segments),
					Status:     tracker.Status().String(),
					TotalTime:  time.Since(acceptedAt),
					CreatedAt:  acceptedAt,
				})
			})
		}

		s.batcher.AddWholeRequest(req)
		tracker.setStatus(StatusQueued)
	}

	if s.numWorkers > 0 {
		go func() {
			prepareRequest()
			s.batcher.ProduceTo(s.queue)
		}()
	} else {
		prepareRequest()
		for {
			batch, ok := s.batcher.Next()
			if !ok {
				break
			}
			s.translators[0].Translate(batch)
		}
	}

	return tracker
}

// CapacityBytes reports the remaining admission budget.
func (s *Service) CapacityBytes() int64 {
	return s.capacity.Load()
}

// Cancel asks the batcher to drop the tracked request if it has not been
// dispatched yet. Fire and forget; racing an in-flight producer task is a
// documented no-op.
func (s *Service) Cancel(t *RequestTracker) {
	go s.batcher.Cancel(t)
}

// Amend asks the batcher to re-prioritize the tracked request. Same race
// caveat as Cancel.
func (s *Service) Amend(t *RequestTracker, nice int) {
	go s.batcher.Amend(t, nice)
}

// workerFailed takes one worker out of the live count after an engine init
// failure so Stop only poisons workers that actually consume.
func (s *Service) workerFailed() {
	s.mu.Lock()
	if s.liveWorkers > 0 {
		s.liveWorkers--
	}
	s.mu.Unlock()
}

// Stop pushes one poison batch per live worker, then blocks until every
// worker has exited. Safe to call more than once; later calls are no-ops.
func (s *Service) Stop() {
	s.mu.Lock()
	workers := s.liveWorkers
	s.liveWorkers = 0
	s.mu.Unlock()

	for range workers {
		s.queue.Produce(PoisonBatch())
	}
	s.wg.Wait()
	if workers > 0 {
		s.log.Infow("service stopped", "workers", workers)
	}
}
