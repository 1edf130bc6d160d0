package translator

import (
	"time"

	"go.uber.org/zap"

	"lingo-engine/internal/metrics"
)

// Translator owns one engine instance bound to a device. With workers
// configured, each Translator lives on its own goroutine: initialize once,
// then consume batches until poisoned. Workers only ever pop from the queue.
type Translator struct {
	device      DeviceID
	engine      Engine
	log         *zap.SugaredLogger
	initialized bool
}

func newTranslator(device DeviceID, engine Engine, log *zap.SugaredLogger) *Translator {
	return &Translator{device: device, engine: engine, log: log}
}

// Init loads the engine. May be expensive; runs on the owning goroutine.
func (t *Translator) Init() error {
	if t.initialized {
		return nil
	}
	start := time.Now()
	if err := t.engine.Init(); err != nil {
		return err
	}
	t.initialized = true
	t.log.Infow("engine initialized", "device", t.device, "duration", time.Since(start).String())
	return nil
}

// ConsumeFrom blocks on the queue until a poison batch arrives.
func (t *Translator) ConsumeFrom(q *batchQueue) {
	metrics.ActiveWorkers.Inc()
	defer metrics.ActiveWorkers.Dec()
	for {
		batch := q.Consume()
		if batch.IsPoison() {
			t.log.Debugw("worker received poison", "device", t.device)
			return
		}
		t.Translate(batch)
	}
}

// Translate runs one batch through the engine and fans results back to the
// owning requests. Engine failures resolve the batch with empty output so no
// request waits forever and admission capacity always returns.
func (t *Translator) Translate(batch *Batch) {
	start := time.Now()
	outs, err := t.engine.Translate(batch.segments())
	if err != nil || len(outs) != batch.Size() {
		t.log.Errorw("engine failed on batch",
			"device", t.device,
			"batch_id", batch.id,
			"segments", batch.Size(),
			"error", err,
		)
		metrics.ErrorCount.WithLabelValues("engine").Inc()
		batch.completeFailed()
		return
	}
	batch.complete(outs)

	metrics.BatchCount.Inc()
	metrics.BatchSegments.Observe(float64(batch.Size()))
	metrics.TranslateDuration.Observe(time.Since(start).Seconds())
}
