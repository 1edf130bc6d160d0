// Package history persists per-request completion records to the database.
// Records are buffered in memory and flushed as one multi-row insert so the
// completion path never blocks on the database.
package history

import (
	"database/sql"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"lingo-engine/internal/metrics"
	"lingo-engine/internal/shared"
)

type Entry struct {
	RequestID  uint64
	PublicID   string
	InputBytes int64
	Segments   int
	Status     string
	TotalTime  time.Duration
	CreatedAt  time.Time
}

type Recorder struct {
	db  *sql.DB
	log *zap.SugaredLogger

	mu  sync.Mutex
	buf []Entry

	stop chan struct{}
	done chan struct{}
}

func NewRecorder(db *sql.DB, log *zap.SugaredLogger) *Recorder {
	r := &Recorder{
		db:   db,
		log:  log,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go r.flushLoop()
	return r
}

// Record buffers one completed request. Safe from any goroutine.
func (r *Recorder) Record(e Entry) {
	r.mu.Lock()
	r.buf = append(r.buf, e)
	r.mu.Unlock()
}

func (r *Recorder) flushLoop() {
	defer close(r.done)
	ticker := time.NewTicker(shared.HistoryFlushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.Flush()
		case <-r.stop:
			r.Flush()
			return
		}
	}
}

// Flush writes every buffered entry. Entries are re-queued on persistent
// failure only until MaxFlushRetries is exhausted, then dropped with an
// error metric; history is best effort.
func (r *Recorder) Flush() {
	r.mu.Lock()
	entries := r.buf
	r.buf = nil
	r.mu.Unlock()

	if len(entries) == 0 {
		return
	}

	stmt, vals := buildInsert(entries)
	var err error
	for range shared.MaxFlushRetries {
		_, err = r.db.Exec(stmt, vals...)
		if err == nil {
			r.log.Infow("flushed request history", "entries", len(entries))
			return
		}
		r.log.Errorw("failed to save request history", "error", err)
		time.Sleep(shared.HistoryRetryDelay)
	}
	metrics.ErrorCount.WithLabelValues("history").Inc()
	r.log.Errorw("dropping request history after retries", "entries", len(entries), "error", err)
}

// Shutdown flushes the buffer and stops the background loop.
func (r *Recorder) Shutdown() {
	close(r.stop)
	<-r.done
}

func buildInsert(entries []Entry) (string, []any) {
	stmt := `INSERT INTO request (
            request_id, public_id, input_bytes,
            segments, status, total_time, created_at
        ) VALUES`

	vals := []any{}
	for _, e := range entries {
		stmt += "(?, ?, ?, ?, ?, ?, ?),"
		vals = append(vals,
			e.RequestID, e.PublicID, e.InputBytes,
			e.Segments, e.Status, e.TotalTime.Milliseconds(), e.CreatedAt,
		)
	}
	return strings.TrimSuffix(stmt, ","), vals
}
