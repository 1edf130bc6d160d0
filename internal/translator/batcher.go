package translator

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"lingo-engine/internal/metrics"
)

// pendingRequest is a request the batcher has accepted but not fully sliced
// into batches. next is the index of the first segment not yet dispatched.
type pendingRequest struct {
	req  *Request
	next int
}

// Batcher accumulates whole requests and slices them into batches in
// priority order (nice ascending, then submission id). Cancel and Amend only
// act on requests with zero dispatched segments; anything already cut into a
// batch proceeds as normal. Which side wins when a cancel races the producer
// task is deliberately left nondeterministic.
type Batcher struct {
	log         *zap.SugaredLogger
	maxSegments int

	mu      sync.Mutex
	batchID uint64
	pending []*pendingRequest
}

func NewBatcher(log *zap.SugaredLogger, maxSegments int) *Batcher {
	return &Batcher{log: log, maxSegments: maxSegments}
}

// AddWholeRequest accepts a request for batching. Requests without segments
// have no work to dispatch and finish immediately.
func (b *Batcher) AddWholeRequest(r *Request) {
	if r.Segments() == 0 {
		r.completeEmpty()
		return
	}
	b.mu.Lock()
	b.pending = append(b.pending, &pendingRequest{req: r})
	b.sortPendingLocked()
	b.mu.Unlock()
}

func (b *Batcher) sortPendingLocked() {
	sort.SliceStable(b.pending, func(i, j int) bool {
		pi, pj := b.pending[i], b.pending[j]
		if pi.req.nice != pj.req.nice {
			return pi.req.nice < pj.req.nice
		}
		return pi.req.id < pj.req.id
	})
}

// Next cuts one batch of up to maxSegments segments from the front of the
// pending list. Returns false when nothing is ready.
func (b *Batcher) Next() (*Batch, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.pending) == 0 {
		return nil, false
	}
	b.batchID++
	batch := &Batch{id: b.batchID}
	for len(b.pending) > 0 && len(batch.units) < b.maxSegments {
		p := b.pending[0]
		for p.next < p.req.Segments() && len(batch.units) < b.maxSegments {
			batch.units = append(batch.units, batchUnit{req: p.req, index: p.next})
			p.next++
		}
		if p.next < p.req.Segments() {
			break
		}
		b.pending = b.pending[1:]
	}
	if len(batch.units) == 0 {
		return nil, false
	}
	return batch, true
}

// ProduceTo drains every ready batch into the queue, blocking when the queue
// is full. Called from the per-submission producer task.
func (b *Batcher) ProduceTo(q *batchQueue) {
	for {
		batch, ok := b.Next()
		if !ok {
			return
		}
		q.Produce(batch)
	}
}

// Cancel drops the tracked request if none of its segments have been
// dispatched yet, resolving it as canceled. Otherwise it is a silent no-op.
func (b *Batcher) Cancel(t *RequestTracker) {
	req := t.request()
	if req == nil {
		return
	}

	b.mu.Lock()
	var removed *pendingRequest
	for i, p := range b.pending {
		if p.req != req {
			continue
		}
		if p.next > 0 {
			b.mu.Unlock()
			b.log.Debugw("cancel ignored, dispatch already began", "request_id", req.id)
			return
		}
		removed = p
		b.pending = append(b.pending[:i], b.pending[i+1:]...)
		break
	}
	b.mu.Unlock()

	if removed == nil {
		b.log.Debugw("cancel ignored, request not pending", "request_id", req.id)
		return
	}

	// Mark canceled before the completion callbacks run; the callbacks'
	// success write is dropped by the tracker's terminal guard.
	t.setStatus(StatusCanceled)
	removed.req.completeEmpty()
	metrics.CanceledRequests.Inc()
	b.log.Infow("request canceled", "request_id", req.id, "public_id", req.publicID)
}

// Amend changes the priority of a still fully pending request and re-sorts.
// Ignored once any segment of the request has been dispatched.
func (b *Batcher) Amend(t *RequestTracker, nice int) {
	req := t.request()
	if req == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range b.pending {
		if p.req != req {
			continue
		}
		if p.next > 0 {
			b.log.Debugw("amend ignored, dispatch already began", "request_id", req.id)
			return
		}
		p.req.nice = nice
		b.sortPendingLocked()
		return
	}
	b.log.Debugw("amend ignored, request not pending", "request_id", req.id)
}

// PendingRequests reports how many requests still have undispatched segments.
func (b *Batcher) PendingRequests() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}
