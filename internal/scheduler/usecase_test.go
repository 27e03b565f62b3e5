package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sitepulse/sitepulse/internal/domain/monitor"
	"github.com/sitepulse/sitepulse/internal/prober"
)

// --- fakes ---

type statusWrite struct {
	id        string
	status    monitor.Status
	checkedAt time.Time
}

type fakeStore struct {
	mu        sync.Mutex
	monitors  []*monitor.Monitor
	listErr   error
	updateErr map[string]error
	writes    []statusWrite
}

func (f *fakeStore) ListAll(ctx context.Context) ([]*monitor.Monitor, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.monitors, nil
}

func (f *fakeStore) UpdateStatus(ctx context.Context, id string, status monitor.Status, checkedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err, ok := f.updateErr[id]; ok {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, statusWrite{id: id, status: status, checkedAt: checkedAt})
	return nil
}

func (f *fakeStore) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

func (f *fakeStore) writesFor(id string) []statusWrite {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []statusWrite
	for _, w := range f.writes {
		if w.id == id {
			out = append(out, w)
		}
	}
	return out
}

type fakeProber struct {
	up      map[string]bool
	blockOn map[string]chan struct{} // probe blocks until channel closed
	started chan string              // receives the url when a probe begins, if set
}

func (f *fakeProber) Probe(ctx context.Context, url string) prober.Outcome {
	if f.started != nil {
		f.started <- url
	}
	if ch, ok := f.blockOn[url]; ok {
		<-ch
	}
	return prober.Outcome{Up: f.up[url], Code: 200}
}

type publishedEvent struct {
	id       string
	old, new monitor.Status
}

type fakeEvents struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (f *fakeEvents) PublishStatusChanged(ctx context.Context, m *monitor.Monitor, oldStatus, newStatus monitor.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{id: m.ID, old: oldStatus, new: newStatus})
	return nil
}

func newTestUC(store *fakeStore, p Prober, events Events, now time.Time) *Usecase {
	uc := NewUC(zap.NewNop(), store, p, events)
	uc.Clock = func() time.Time { return now }
	return uc
}

// --- tests ---

func TestCycle_StoreUnavailable_NoWrites(t *testing.T) {
	store := &fakeStore{listErr: monitor.ErrUnavailable}
	uc := newTestUC(store, &fakeProber{}, nil, time.Now().UTC())

	_, err := uc.Cycle(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, monitor.ErrUnavailable)
	assert.Zero(t, store.writeCount())
}

func TestCycle_WritesExactlyOncePerDueMonitor(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{monitors: []*monitor.Monitor{
		{ID: "reachable", URL: "https://up.example", Interval: 60 * time.Second, LastChecked: now.Add(-61 * time.Second), Status: monitor.StatusDown},
		{ID: "unreachable", URL: "https://down.example", Interval: 60 * time.Second, Status: monitor.StatusPending},
		{ID: "not-due", URL: "https://idle.example", Interval: 60 * time.Second, LastChecked: now.Add(-30 * time.Second), Status: monitor.StatusUp},
	}}
	p := &fakeProber{up: map[string]bool{"https://up.example": true}}
	uc := newTestUC(store, p, nil, now)

	stats, err := uc.Cycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Listed)
	assert.Equal(t, 2, stats.Due)
	assert.Equal(t, 2, stats.Probed)
	assert.Equal(t, 1, stats.Up)
	assert.Equal(t, 1, stats.Down)
	assert.Equal(t, 2, store.writeCount())

	upWrites := store.writesFor("reachable")
	require.Len(t, upWrites, 1)
	assert.Equal(t, monitor.StatusUp, upWrites[0].status)
	assert.Equal(t, now, upWrites[0].checkedAt)

	downWrites := store.writesFor("unreachable")
	require.Len(t, downWrites, 1)
	assert.Equal(t, monitor.StatusDown, downWrites[0].status)

	assert.Empty(t, store.writesFor("not-due"))
}

func TestCycle_SkipsMonitorsWithoutURL(t *testing.T) {
	store := &fakeStore{monitors: []*monitor.Monitor{
		{ID: "no-url", Interval: 60 * time.Second},
		{ID: "ok", URL: "https://up.example", Interval: 60 * time.Second},
	}}
	p := &fakeProber{up: map[string]bool{"https://up.example": true}}
	uc := newTestUC(store, p, nil, time.Now().UTC())

	stats, err := uc.Cycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 1, stats.Probed)
	assert.Equal(t, 1, store.writeCount())
	assert.Empty(t, store.writesFor("no-url"))
}

func TestCycle_VanishedMonitorIsNonFatal(t *testing.T) {
	store := &fakeStore{
		monitors: []*monitor.Monitor{
			{ID: "gone", URL: "https://gone.example", Interval: 60 * time.Second},
		},
		updateErr: map[string]error{"gone": monitor.ErrNotFound},
	}
	uc := newTestUC(store, &fakeProber{}, nil, time.Now().UTC())

	stats, err := uc.Cycle(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.WriteErrors)
	assert.Zero(t, store.writeCount())
}

func TestCycle_PublishesStatusTransitions(t *testing.T) {
	now := time.Now().UTC()
	store := &fakeStore{monitors: []*monitor.Monitor{
		{ID: "fresh", URL: "https://up.example", Interval: 60 * time.Second, Status: monitor.StatusPending},
		{ID: "steady", URL: "https://steady.example", Interval: 60 * time.Second, Status: monitor.StatusUp, LastChecked: now.Add(-2 * time.Minute)},
	}}
	p := &fakeProber{up: map[string]bool{
		"https://up.example":     true,
		"https://steady.example": true,
	}}
	events := &fakeEvents{}
	uc := newTestUC(store, p, events, now)

	_, err := uc.Cycle(context.Background())
	require.NoError(t, err)

	events.mu.Lock()
	defer events.mu.Unlock()
	require.Len(t, events.events, 1)
	assert.Equal(t, "fresh", events.events[0].id)
	assert.Equal(t, monitor.StatusPending, events.events[0].old)
	assert.Equal(t, monitor.StatusUp, events.events[0].new)
}

func TestCycle_ShutdownLetsInFlightProbeFinish(t *testing.T) {
	release := make(chan struct{})
	started := make(chan string, 1)
	store := &fakeStore{monitors: []*monitor.Monitor{
		{ID: "inflight", URL: "https://inflight.example", Interval: 60 * time.Second},
	}}
	p := &fakeProber{
		up:      map[string]bool{"https://inflight.example": true},
		blockOn: map[string]chan struct{}{"https://inflight.example": release},
		started: started,
	}
	uc := newTestUC(store, p, nil, time.Now().UTC())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = uc.Cycle(ctx)
	}()

	<-started
	cancel() // shutdown begins while the probe is in flight
	close(release)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("cycle did not drain the in-flight probe")
	}

	writes := store.writesFor("inflight")
	require.Len(t, writes, 1, "in-flight probe result must still be written after shutdown")
	assert.Equal(t, monitor.StatusUp, writes[0].status)
}

func TestCycle_FastWriteNotBlockedBySlowProbe(t *testing.T) {
	release := make(chan struct{})
	store := &fakeStore{monitors: []*monitor.Monitor{
		{ID: "slow", URL: "https://slow.example", Interval: 60 * time.Second},
		{ID: "fast", URL: "https://fast.example", Interval: 60 * time.Second},
	}}
	p := &fakeProber{
		up:      map[string]bool{"https://fast.example": true, "https://slow.example": true},
		blockOn: map[string]chan struct{}{"https://slow.example": release},
	}
	uc := newTestUC(store, p, nil, time.Now().UTC())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = uc.Cycle(context.Background())
	}()

	// the fast monitor's write must land while the slow probe hangs
	require.Eventually(t, func() bool {
		return len(store.writesFor("fast")) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Empty(t, store.writesFor("slow"))

	close(release)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("cycle did not finish after slow probe was released")
	}
	assert.Len(t, store.writesFor("slow"), 1)
}
