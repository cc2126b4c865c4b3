package monitor

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlpilot/internal/testutil"
)

const health = "GET /api/health"

func newTestMonitor(t *testing.T, interval time.Duration) *Monitor {
	t.Helper()
	m := New(Config{Interval: interval, Logger: testutil.NewTestLogger(t)})
	t.Cleanup(m.Stop)
	return m
}

func waitStatus(t *testing.T, ch chan Status) Status {
	t.Helper()
	select {
	case st := <-ch:
		return st
	case <-time.After(2 * time.Second):
		t.Fatal("no status published")
		return Status{}
	}
}

func TestStart_ProbesImmediately(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	m := newTestMonitor(t, time.Hour)
	ch := m.Subscribe()
	defer m.Unsubscribe(ch)

	m.Start(context.Background(), fb.URL)

	st := waitStatus(t, ch)
	assert.True(t, st.Connected)
	assert.True(t, st.Reachable)
	assert.Equal(t, "postgresql", st.DatabaseType)
	assert.Equal(t, fb.URL, st.BaseURL)
	assert.True(t, m.Connected())
	assert.Equal(t, 1, fb.Hits(health))
}

func TestStart_PollsOnInterval(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	m := newTestMonitor(t, 10*time.Millisecond)

	m.Start(context.Background(), fb.URL)

	assert.Eventually(t, func() bool {
		return fb.Hits(health) >= 3
	}, 2*time.Second, 5*time.Millisecond)
}

func TestPublishesOnlyOnChange(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	m := newTestMonitor(t, 10*time.Millisecond)
	ch := m.Subscribe()
	defer m.Unsubscribe(ch)

	m.Start(context.Background(), fb.URL)
	first := waitStatus(t, ch)
	assert.True(t, first.Connected)

	// several unchanged probes publish nothing
	require.Eventually(t, func() bool { return fb.Hits(health) >= 4 }, 2*time.Second, 5*time.Millisecond)
	select {
	case st := <-ch:
		t.Fatalf("unexpected publish: %+v", st)
	default:
	}

	fb.Set(health, testutil.HealthyDisconnected)
	second := waitStatus(t, ch)
	assert.False(t, second.Connected)
	assert.True(t, second.Reachable)
	assert.False(t, m.Connected())
}

func TestProbe_FailuresAreFalse(t *testing.T) {
	tests := []struct {
		name  string
		reply testutil.Reply
	}{
		{"server error", testutil.Reply{Status: http.StatusInternalServerError}},
		{"not connected", testutil.HealthyDisconnected},
		{"string true", testutil.Reply{Body: map[string]any{"database_connected": "true"}}},
		{"garbage", testutil.Reply{Body: "ok"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := testutil.NewFakeBackend(t)
			fb.Set(health, tt.reply)
			m := newTestMonitor(t, time.Hour)

			assert.False(t, m.Probe(context.Background(), fb.URL))
			assert.False(t, m.Connected())
		})
	}
}

func TestProbe_Unreachable(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	url := fb.URL
	fb.Close()

	m := newTestMonitor(t, time.Hour)
	assert.False(t, m.Probe(context.Background(), url))
	assert.False(t, m.Status().Reachable)
}

func TestReconfigure_StopsOldLoop(t *testing.T) {
	oldBackend := testutil.NewFakeBackend(t)
	newBackend := testutil.NewFakeBackend(t)
	m := newTestMonitor(t, 10*time.Millisecond)

	m.Start(context.Background(), oldBackend.URL)
	require.Eventually(t, func() bool { return oldBackend.Hits(health) >= 2 }, 2*time.Second, 5*time.Millisecond)

	m.Reconfigure(newBackend.URL)
	time.Sleep(20 * time.Millisecond) // let a cancelled request land server-side
	hitsAtSwitch := oldBackend.Hits(health)

	require.Eventually(t, func() bool { return newBackend.Hits(health) >= 3 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, hitsAtSwitch, oldBackend.Hits(health), "old URL probed after reconfigure")
	assert.Equal(t, newBackend.URL, m.BaseURL())
	assert.Equal(t, newBackend.URL, m.Status().BaseURL)
}

func TestReconfigure_SameURLIsNoop(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	m := newTestMonitor(t, time.Hour)
	ch := m.Subscribe()
	defer m.Unsubscribe(ch)

	m.Start(context.Background(), fb.URL)
	waitStatus(t, ch)

	m.Reconfigure(fb.URL)

	// a restart would probe immediately
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, fb.Hits(health))
}

func TestReconfigure_FirstProbePublishes(t *testing.T) {
	a := testutil.NewFakeBackend(t)
	b := testutil.NewFakeBackend(t)
	m := newTestMonitor(t, time.Hour)
	ch := m.Subscribe()
	defer m.Unsubscribe(ch)

	m.Start(context.Background(), a.URL)
	waitStatus(t, ch)

	m.Reconfigure(b.URL)
	st := waitStatus(t, ch)
	assert.Equal(t, b.URL, st.BaseURL)
	assert.True(t, st.Connected)
}

func TestProbe_StaleURLNotRecorded(t *testing.T) {
	current := testutil.NewFakeBackend(t)
	stale := testutil.NewFakeBackend(t)
	stale.Set(health, testutil.HealthyDisconnected)

	m := newTestMonitor(t, time.Hour)
	ch := m.Subscribe()
	defer m.Unsubscribe(ch)
	m.Start(context.Background(), current.URL)
	waitStatus(t, ch)

	assert.False(t, m.Probe(context.Background(), stale.URL))
	assert.True(t, m.Connected())
}

func TestStop(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	m := newTestMonitor(t, 10*time.Millisecond)

	m.Start(context.Background(), fb.URL)
	require.Eventually(t, func() bool { return fb.Hits(health) >= 2 }, 2*time.Second, 5*time.Millisecond)

	m.Stop()
	time.Sleep(20 * time.Millisecond)
	hits := fb.Hits(health)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, hits, fb.Hits(health))

	// stopping twice is fine
	m.Stop()
}

func TestStart_ContextCancelStopsLoop(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	m := newTestMonitor(t, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx, fb.URL)
	require.Eventually(t, func() bool { return fb.Hits(health) >= 1 }, 2*time.Second, 5*time.Millisecond)

	cancel()
	time.Sleep(30 * time.Millisecond)
	hits := fb.Hits(health)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, hits, fb.Hits(health))
}
