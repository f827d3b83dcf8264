package journal

import (
	"context"
	"testing"
	"time"

	"github.com/Mr-Dark-debug/flapboard/internal/flap"
	"github.com/Mr-Dark-debug/flapboard/internal/render"
)

var epoch = time.Unix(1700000000, 0)

type recorded struct {
	store *SQLiteStore
	tl    *render.Timeline
	orch  *flap.Orchestrator
	rec   *Recorder
}

func newRecorded(t *testing.T, cfg RecorderConfig) *recorded {
	t.Helper()
	store := openTestStore(t)
	tl := render.NewTimeline(epoch)
	tile := render.NewTile(tl)
	orch := flap.NewOrchestrator(tile.Pair(), tl, flap.Config{Index: 3})
	orch.SetVocabulary(flap.Tokenize("ABCDE", nil))

	rec := NewRecorder(store, cfg)
	rec.Start(context.Background())
	orch.AddObserver(rec)
	return &recorded{store: store, tl: tl, orch: orch, rec: rec}
}

func (r *recorded) sessions(t *testing.T, status string) []*Session {
	t.Helper()
	got, err := r.store.QuerySessions(SessionFilter{Status: &status})
	if err != nil {
		t.Fatalf("QuerySessions failed: %v", err)
	}
	return got
}

func TestRecorderJournalsSessionsAndFlips(t *testing.T) {
	r := newRecorded(t, DefaultRecorderConfig())

	r.orch.DisplayToken(flap.Ptr("A"), 0)
	r.orch.DisplayToken(flap.Ptr("D"), 200*time.Millisecond)
	r.tl.Advance(epoch.Add(10 * time.Second))

	if err := r.rec.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	snaps := r.sessions(t, StatusSnapped)
	if len(snaps) != 1 || snaps[0].Target != "A" || snaps[0].Kind != KindSnap {
		t.Fatalf("expected one snap to A, got %+v", snaps)
	}

	reached := r.sessions(t, StatusReached)
	if len(reached) != 1 {
		t.Fatalf("expected one reached session, got %d", len(reached))
	}
	sess := reached[0]
	if sess.Flap != 3 || sess.From != "A" || sess.Target != "D" || sess.Steps != 3 {
		t.Errorf("unexpected session: %+v", sess)
	}
	if sess.FlipDurationNs != int64(200*time.Millisecond) {
		t.Errorf("expected nominal 200ms, got %v", time.Duration(sess.FlipDurationNs))
	}
	if sess.EndTime == nil || *sess.EndTime != epoch.Add(600*time.Millisecond).UnixNano() {
		t.Errorf("expected the session to end after three flips, got %v", sess.EndTime)
	}

	flips, err := r.store.QueryFlips(sess.SessionID)
	if err != nil {
		t.Fatalf("QueryFlips failed: %v", err)
	}
	want := []string{"B", "C", "D"}
	if len(flips) != len(want) {
		t.Fatalf("expected %d flips, got %d", len(want), len(flips))
	}
	for i, f := range flips {
		if f.To != want[i] || !f.Completed {
			t.Errorf("flip %d: expected completed flip to %s, got %+v", i, want[i], f)
		}
		if f.DurationNs() != int64(200*time.Millisecond) {
			t.Errorf("flip %d took %v", i, time.Duration(f.DurationNs()))
		}
	}

	m := r.rec.Metrics()
	if m.FlipsRecorded != 3 || m.SessionsRecorded != 2 || m.Dropped != 0 {
		t.Errorf("unexpected metrics: %+v", m)
	}
}

func TestRecorderMarksCancelledFlips(t *testing.T) {
	r := newRecorded(t, RecorderConfig{BatchSize: 1, FlushInterval: time.Hour, QueueSize: 64})

	r.orch.DisplayToken(flap.Ptr("A"), 0)
	r.orch.DisplayToken(flap.Ptr("D"), 200*time.Millisecond)
	r.tl.Advance(epoch.Add(250 * time.Millisecond))
	r.orch.DisplayToken(flap.Ptr("A"), 200*time.Millisecond)
	r.tl.Advance(epoch.Add(10 * time.Second))
	r.rec.Stop()

	superseded := r.sessions(t, StatusSuperseded)
	if len(superseded) != 1 {
		t.Fatalf("expected one superseded session, got %d", len(superseded))
	}
	stats, err := r.store.GetSessionStats(superseded[0].SessionID)
	if err != nil {
		t.Fatalf("GetSessionStats failed: %v", err)
	}
	if stats.CompletedFlips != 1 || stats.IncompleteFlips != 1 {
		t.Errorf("expected one completed and one cancelled flip, got %+v", stats)
	}

	reached := r.sessions(t, StatusReached)
	if len(reached) != 1 || reached[0].Steps != 3 {
		t.Fatalf("expected the replacement to reach A in 3 steps, got %+v", reached)
	}
}

func TestRecorderStopRecordsFlipInFlight(t *testing.T) {
	r := newRecorded(t, DefaultRecorderConfig())

	r.orch.DisplayToken(flap.Ptr("A"), 0)
	r.orch.DisplayToken(flap.Ptr("C"), time.Second)
	r.rec.Stop()

	// Observations after Stop are ignored.
	r.tl.Advance(epoch.Add(10 * time.Second))

	running := r.sessions(t, StatusRunning)
	if len(running) != 1 {
		t.Fatalf("expected the unfinished session to stay running, got %d", len(running))
	}
	flips, _ := r.store.QueryFlips(running[0].SessionID)
	if len(flips) != 1 || flips[0].Completed {
		t.Errorf("expected one incomplete flip, got %+v", flips)
	}
	if err := r.rec.Stop(); err != nil {
		t.Errorf("second Stop should be a no-op, got %v", err)
	}
}
