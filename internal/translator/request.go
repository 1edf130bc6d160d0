package translator

import (
	"sync"
	"sync/atomic"

	"lingo-engine/internal/textproc"
	"lingo-engine/internal/vocab"
)

// Request is one accepted unit of submitted work: the owned input text, the
// segments derived from it, and the promise the caller is waiting on. It is
// created by the service after admission, consumed segment by segment through
// batches, and finishes exactly once when every segment has a translation (or
// when it is canceled before dispatch).
type Request struct {
	id        uint64
	publicID  string
	lineBegin int
	// nice orders pending requests inside the batcher; lower runs sooner.
	// Guarded by the batcher's lock once the request has been added.
	nice int

	vocabs   *vocab.Set
	source   string
	segments []textproc.Segment
	ranges   []textproc.SourceRange

	translations []string
	remaining    atomic.Int32
	failed       atomic.Bool

	// callbacks run before the promise resolves so that side effects such as
	// returning admission capacity are visible to a caller woken by Wait.
	callbacks []func()
	finish    sync.Once
	resolve   func(Response)
}

func newRequest(
	id uint64,
	publicID string,
	lineBegin, nice int,
	vocabs *vocab.Set,
	source string,
	segments []textproc.Segment,
	ranges []textproc.SourceRange,
	resolve func(Response),
) *Request {
	r := &Request{
		id:           id,
		publicID:     publicID,
		lineBegin:    lineBegin,
		nice:         nice,
		vocabs:       vocabs,
		source:       source,
		segments:     segments,
		ranges:       ranges,
		translations: make([]string, len(segments)),
		resolve:      resolve,
	}
	r.remaining.Store(int32(len(segments)))
	return r
}

func (r *Request) ID() uint64 { return r.id }

func (r *Request) PublicID() string { return r.publicID }

func (r *Request) Segments() int { return len(r.segments) }

// OnComplete registers a completion callback. Must be called before the
// request is handed to the batcher; the slice is read concurrently afterwards.
func (r *Request) OnComplete(fn func()) {
	r.callbacks = append(r.callbacks, fn)
}

// completeUnit stores the translation for one segment. The worker finishing
// the last outstanding segment finishes the whole request; the atomic counter
// orders the slot writes of other workers before the final read.
func (r *Request) completeUnit(index int, out string) {
	r.translations[index] = out
	if r.remaining.Add(-1) == 0 {
		r.finishWith(newResponse(r.publicID, r.source, r.translations))
	}
}

// markFailed records that at least one of the request's batches went through
// a failing engine. The request still completes normally, but its output must
// never be treated as a genuine translation (e.g. written to the cache).
func (r *Request) markFailed() {
	r.failed.Store(true)
}

// Failed reports whether any batch of this request hit an engine failure.
func (r *Request) Failed() bool {
	return r.failed.Load()
}

// completeEmpty finishes the request immediately with an empty payload. Used
// for zero-segment inputs and for cancellation before dispatch.
func (r *Request) completeEmpty() {
	r.finishWith(EmptyResponse())
}

func (r *Request) finishWith(resp Response) {
	r.finish.Do(func() {
		for _, fn := range r.callbacks {
			fn()
		}
		r.resolve(resp)
	})
}
