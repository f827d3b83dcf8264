package journal

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Mr-Dark-debug/flapboard/internal/flap"
)

// RecorderConfig tunes the write batching of a Recorder.
type RecorderConfig struct {
	// BatchSize is the number of flips buffered before a flush.
	BatchSize int `json:"batch_size"`
	// FlushInterval is the longest a flip waits in the buffer.
	FlushInterval time.Duration `json:"flush_interval"`
	// QueueSize bounds the channel between the UI loop and the writer.
	// Records arriving while it is full are dropped and counted.
	QueueSize int `json:"queue_size"`
}

// DefaultRecorderConfig flushes every 500ms or 256 flips.
func DefaultRecorderConfig() RecorderConfig {
	return RecorderConfig{
		BatchSize:     256,
		FlushInterval: 500 * time.Millisecond,
		QueueSize:     4096,
	}
}

// RecorderMetrics tracks what the recorder wrote.
type RecorderMetrics struct {
	SessionsRecorded int64 `json:"sessions_recorded"`
	FlipsRecorded    int64 `json:"flips_recorded"`
	Dropped          int64 `json:"dropped"`
	ErrorCount       int64 `json:"error_count"`
	BatchesCommitted int64 `json:"batches_committed"`
}

type record struct {
	session *Session
	flip    *Flip
}

// Recorder turns flap transitions into journal rows. Observe runs on the
// host's event loop and never blocks; rows are written by a background
// goroutine that batches flips.
type Recorder struct {
	cfg     RecorderConfig
	store   Store
	metrics RecorderMetrics

	queue chan record
	wg    sync.WaitGroup

	// Owned by the goroutine calling Observe.
	open    map[string]*Session
	pending map[int]*Flip
	stopped bool
}

// NewRecorder creates a recorder writing to store. Call Start before the
// first transition.
func NewRecorder(store Store, cfg RecorderConfig) *Recorder {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultRecorderConfig().BatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = DefaultRecorderConfig().FlushInterval
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultRecorderConfig().QueueSize
	}
	return &Recorder{
		cfg:     cfg,
		store:   store,
		queue:   make(chan record, cfg.QueueSize),
		open:    make(map[string]*Session),
		pending: make(map[int]*Flip),
	}
}

// Start launches the writer goroutine.
func (r *Recorder) Start(ctx context.Context) {
	r.wg.Add(1)
	go r.flushLoop(ctx)
}

// Stop records flips still in the air as incomplete, drains the queue and
// waits for the writer to finish.
func (r *Recorder) Stop() error {
	if r.stopped {
		return nil
	}
	for f := range r.pending {
		r.abandon(f)
	}
	r.stopped = true
	close(r.queue)
	r.wg.Wait()

	m := r.Metrics()
	log.Printf("[INFO] Journal closed: %d sessions, %d flips, %d dropped",
		m.SessionsRecorded, m.FlipsRecorded, m.Dropped)
	return nil
}

// Metrics returns a snapshot of the recorder counters.
func (r *Recorder) Metrics() RecorderMetrics {
	return RecorderMetrics{
		SessionsRecorded: atomic.LoadInt64(&r.metrics.SessionsRecorded),
		FlipsRecorded:    atomic.LoadInt64(&r.metrics.FlipsRecorded),
		Dropped:          atomic.LoadInt64(&r.metrics.Dropped),
		ErrorCount:       atomic.LoadInt64(&r.metrics.ErrorCount),
		BatchesCommitted: atomic.LoadInt64(&r.metrics.BatchesCommitted),
	}
}

// Observe implements flap.Observer.
func (r *Recorder) Observe(t flap.Transition) {
	if r.stopped {
		return
	}
	at := t.At.UnixNano()

	switch t.Kind {
	case flap.TransitionRequested:
		s := &Session{
			SessionID:      t.SessionID,
			Flap:           t.Flap,
			Kind:           KindAnimated,
			From:           string(t.From),
			Target:         string(t.Target),
			Vocabulary:     tokenStrings(t.Vocabulary),
			FlipDurationNs: int64(t.Phases.Total()),
			StartTime:      at,
			Status:         StatusRunning,
		}
		r.open[s.SessionID] = s
		r.enqueueSession(s)

	case flap.TransitionSnapped:
		r.abandon(t.Flap)
		r.enqueueSession(&Session{
			SessionID:  t.SessionID,
			Flap:       t.Flap,
			Kind:       KindSnap,
			From:       string(t.From),
			Target:     string(t.Target),
			Vocabulary: tokenStrings(t.Vocabulary),
			StartTime:  at,
			EndTime:    &at,
			Status:     StatusSnapped,
		})

	case flap.TransitionStep:
		// A new flip cancels whatever the flap was still animating.
		r.abandon(t.Flap)
		r.pending[t.Flap] = &Flip{
			SessionID: t.SessionID,
			Flap:      t.Flap,
			Step:      t.Step,
			From:      string(t.From),
			To:        string(t.To),
			BackSet:   t.Back.String(),
			StartTime: at,
		}

	case flap.TransitionCompleted:
		f := r.pending[t.Flap]
		if f == nil || f.SessionID != t.SessionID || f.Step != t.Step {
			return
		}
		delete(r.pending, t.Flap)
		f.EndTime = &at
		f.Completed = true
		r.enqueueFlip(f)

	case flap.TransitionReached:
		r.close(t, StatusReached)
	case flap.TransitionSuperseded:
		r.close(t, StatusSuperseded)
	case flap.TransitionExhausted:
		r.close(t, StatusExhausted)
	}
}

func (r *Recorder) close(t flap.Transition, status string) {
	s, ok := r.open[t.SessionID]
	if !ok {
		return
	}
	delete(r.open, t.SessionID)
	at := t.At.UnixNano()
	s.EndTime = &at
	s.Status = status
	s.Steps = t.Step
	r.enqueueSession(s)
}

// abandon records the flap's in-flight flip as never completed.
func (r *Recorder) abandon(flapIndex int) {
	f := r.pending[flapIndex]
	if f == nil {
		return
	}
	delete(r.pending, flapIndex)
	r.enqueueFlip(f)
}

func (r *Recorder) enqueueSession(s *Session) {
	cp := *s
	r.enqueue(record{session: &cp})
}

func (r *Recorder) enqueueFlip(f *Flip) {
	r.enqueue(record{flip: f})
}

func (r *Recorder) enqueue(rec record) {
	select {
	case r.queue <- rec:
	default:
		if atomic.AddInt64(&r.metrics.Dropped, 1) == 1 {
			log.Printf("[WARN] Journal queue full, dropping records")
		}
	}
}

// flushLoop writes sessions as they arrive and batches flips, committing
// when BatchSize flips accumulate or FlushInterval elapses.
func (r *Recorder) flushLoop(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.cfg.FlushInterval)
	defer ticker.Stop()

	buf := make([]*Flip, 0, r.cfg.BatchSize)

	flush := func() {
		if len(buf) == 0 {
			return
		}
		if err := r.store.BatchInsertFlips(buf); err != nil {
			log.Printf("[ERROR] Flushing flip batch: %v", err)
			atomic.AddInt64(&r.metrics.ErrorCount, 1)
		} else {
			atomic.AddInt64(&r.metrics.BatchesCommitted, 1)
			atomic.AddInt64(&r.metrics.FlipsRecorded, int64(len(buf)))
		}
		buf = buf[:0]
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return

		case rec, ok := <-r.queue:
			if !ok {
				flush()
				return
			}
			if rec.session != nil {
				// Sessions are written at once so that their flips satisfy
				// the foreign key when the batch commits.
				if err := r.store.UpsertSession(rec.session); err != nil {
					log.Printf("[ERROR] Recording session: %v", err)
					atomic.AddInt64(&r.metrics.ErrorCount, 1)
				} else if rec.session.Status != StatusRunning {
					atomic.AddInt64(&r.metrics.SessionsRecorded, 1)
				}
			}
			if rec.flip != nil {
				buf = append(buf, rec.flip)
				if len(buf) >= r.cfg.BatchSize {
					flush()
				}
			}

		case <-ticker.C:
			flush()
		}
	}
}

func tokenStrings(ts []flap.Token) []string {
	if ts == nil {
		return nil
	}
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = string(t)
	}
	return out
}
