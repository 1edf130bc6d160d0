package translator

import "lingo-engine/internal/textproc"

// batchUnit is one segment of one request, scheduled into a batch.
type batchUnit struct {
	req   *Request
	index int
}

// Batch is a group of segments assembled for a single engine call. The
// poison batch carries no work; it instructs exactly one worker to exit its
// consume loop.
type Batch struct {
	id     uint64
	units  []batchUnit
	poison bool
}

// PoisonBatch returns the shutdown sentinel pushed once per worker by Stop.
func PoisonBatch() *Batch {
	return &Batch{poison: true}
}

func (b *Batch) IsPoison() bool { return b.poison }

func (b *Batch) Size() int { return len(b.units) }

func (b *Batch) segments() []textproc.Segment {
	segs := make([]textproc.Segment, len(b.units))
	for i, u := range b.units {
		segs[i] = u.req.segments[u.index]
	}
	return segs
}

// complete fans the engine output back to the owning requests.
func (b *Batch) complete(outs []string) {
	for i, u := range b.units {
		u.req.completeUnit(u.index, outs[i])
	}
}

// completeFailed resolves every unit with empty output after an engine
// failure so admission capacity still returns to the pool. The owning
// requests are marked failed first so the empty output is never mistaken for
// a real translation downstream.
func (b *Batch) completeFailed() {
	for _, u := range b.units {
		u.req.markFailed()
	}
	for _, u := range b.units {
		u.req.completeUnit(u.index, "")
	}
}
