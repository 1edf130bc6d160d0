package translator

import "lingo-engine/internal/metrics"

// batchQueue is the bounded blocking hand-off between producer-side tasks
// and worker goroutines. Multi-producer multi-consumer safe; Produce blocks
// while the queue is full, Consume blocks while it is empty. A channel gives
// the strict one-consumer-per-pop behavior the poison protocol relies on.
type batchQueue struct {
	ch chan *Batch
}

func newBatchQueue(capacity int) *batchQueue {
	if capacity < 1 {
		capacity = 1
	}
	return &batchQueue{ch: make(chan *Batch, capacity)}
}

func (q *batchQueue) Produce(b *Batch) {
	q.ch <- b
	metrics.QueueDepth.Set(float64(len(q.ch)))
}

func (q *batchQueue) Consume() *Batch {
	b := <-q.ch
	metrics.QueueDepth.Set(float64(len(q.ch)))
	return b
}
