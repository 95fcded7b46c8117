package scheduler_test

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/zephyr"
	"github.com/shaharia-lab/zephyr/internal/config"
	"github.com/shaharia-lab/zephyr/internal/scheduler"
)

// --- helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// --- Emitter stub ---

type stubEmitter struct {
	mu     sync.Mutex
	events []zephyr.Event
}

func (e *stubEmitter) EmitAsync(_ context.Context, evt zephyr.Event) *zephyr.Handle {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, evt)
	return nil
}

func (e *stubEmitter) emitted() []zephyr.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]zephyr.Event, len(e.events))
	copy(out, e.events)
	return out
}

func (e *stubEmitter) waitForEvents(n int, timeout time.Duration) []zephyr.Event {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if len(e.emitted()) >= n {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	return e.emitted()
}

// --- source builder ---

func buildSource(name, eventType string) config.ScheduledSource {
	return config.ScheduledSource{
		Name:      name,
		Every:     "1h",
		EventType: eventType,
		Payload:   map[string]any{"source": name},
	}
}

// --- tests ---

// TestSchedule_Validation verifies that malformed sources are rejected.
func TestSchedule_Validation(t *testing.T) {
	tests := []struct {
		name    string
		source  config.ScheduledSource
		wantErr string
	}{
		{
			name:    "missing name",
			source:  config.ScheduledSource{Every: "1m", EventType: "heartbeat"},
			wantErr: "source name is required",
		},
		{
			name:    "missing event type",
			source:  config.ScheduledSource{Name: "pulse", Every: "1m"},
			wantErr: "source event_type is required",
		},
		{
			name:    "cron and every both set",
			source:  config.ScheduledSource{Name: "pulse", Cron: "* * * * *", Every: "1m", EventType: "heartbeat"},
			wantErr: "mutually exclusive",
		},
		{
			name:    "neither cron nor every",
			source:  config.ScheduledSource{Name: "pulse", EventType: "heartbeat"},
			wantErr: "either cron or every is required",
		},
		{
			name:    "unparseable every",
			source:  config.ScheduledSource{Name: "pulse", Every: "often", EventType: "heartbeat"},
			wantErr: "parsing every duration",
		},
		{
			name:    "every below one second",
			source:  config.ScheduledSource{Name: "pulse", Every: "100ms", EventType: "heartbeat"},
			wantErr: "at least 1s",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, err := scheduler.New(&stubEmitter{}, newTestLogger())
			require.NoError(t, err)
			defer s.Stop() //nolint:errcheck

			err = s.Schedule(tc.source)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
			assert.Equal(t, 0, s.ExportedJobCount())
		})
	}
}

// TestSchedule_AcceptsCronAndInterval verifies both schedule forms register.
func TestSchedule_AcceptsCronAndInterval(t *testing.T) {
	s, err := scheduler.New(&stubEmitter{}, newTestLogger())
	require.NoError(t, err)
	defer s.Stop() //nolint:errcheck

	require.NoError(t, s.Schedule(config.ScheduledSource{
		Name:      "nightly",
		Cron:      "0 3 * * *",
		EventType: "reports.nightly",
	}))
	require.NoError(t, s.Schedule(buildSource("pulse", "heartbeat")))

	assert.Equal(t, 2, s.ExportedJobCount())
}

// TestSchedule_ReplacesExisting verifies rescheduling a source by name swaps
// the job instead of adding a second one.
func TestSchedule_ReplacesExisting(t *testing.T) {
	s, err := scheduler.New(&stubEmitter{}, newTestLogger())
	require.NoError(t, err)
	defer s.Stop() //nolint:errcheck

	src := buildSource("pulse", "heartbeat")
	require.NoError(t, s.Schedule(src))

	src.Every = "30m"
	require.NoError(t, s.Schedule(src))

	assert.Equal(t, 1, s.ExportedJobCount())
}

// TestUnschedule verifies removal by name, including unknown names.
func TestUnschedule(t *testing.T) {
	s, err := scheduler.New(&stubEmitter{}, newTestLogger())
	require.NoError(t, err)
	defer s.Stop() //nolint:errcheck

	require.NoError(t, s.Schedule(buildSource("pulse", "heartbeat")))
	require.Equal(t, 1, s.ExportedJobCount())

	s.Unschedule("pulse")
	assert.Equal(t, 0, s.ExportedJobCount())

	assert.NotPanics(t, func() {
		s.Unschedule("ghost")
	})
}

// TestStart_SkipsInvalidSources verifies startup continues past sources that
// fail to schedule.
func TestStart_SkipsInvalidSources(t *testing.T) {
	s, err := scheduler.New(&stubEmitter{}, newTestLogger())
	require.NoError(t, err)
	defer s.Stop() //nolint:errcheck

	sources := []config.ScheduledSource{
		buildSource("good", "heartbeat"),
		{Name: "broken", Every: "soon", EventType: "heartbeat"},
	}
	require.NoError(t, s.Start(context.Background(), sources))

	assert.Equal(t, 1, s.ExportedJobCount())
}

// TestFire_EmitsEvent verifies a fired source produces a fully formed event.
func TestFire_EmitsEvent(t *testing.T) {
	emitter := &stubEmitter{}
	s, err := scheduler.New(emitter, newTestLogger())
	require.NoError(t, err)
	defer s.Stop() //nolint:errcheck

	s.ExportedFire(config.ScheduledSource{
		Name:      "pulse",
		Every:     "1h",
		EventType: "heartbeat",
		Payload:   map[string]any{"region": "us-east-1"},
	})

	events := emitter.emitted()
	require.Len(t, events, 1)
	assert.Equal(t, "heartbeat", events[0].Type)
	assert.Equal(t, map[string]any{"region": "us-east-1"}, events[0].Payload)
	assert.NotEmpty(t, events[0].ID)
	assert.False(t, events[0].EmittedAt.IsZero())
}

// TestFire_DeliversThroughDispatcher verifies the scheduler drives a real
// dispatcher end to end.
func TestFire_DeliversThroughDispatcher(t *testing.T) {
	d := zephyr.New()
	defer d.Shutdown(context.Background()) //nolint:errcheck

	var (
		mu       sync.Mutex
		received []zephyr.Event
	)
	_, err := d.On("heartbeat", func(_ context.Context, evt zephyr.Event) error {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, evt)
		return nil
	})
	require.NoError(t, err)

	s, err := scheduler.New(d, newTestLogger())
	require.NoError(t, err)
	defer s.Stop() //nolint:errcheck

	s.ExportedFire(buildSource("pulse", "heartbeat"))

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(received)
		mu.Unlock()
		if n >= 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	assert.Equal(t, "heartbeat", received[0].Type)
}

// TestLongIntervalDoesNotFireImmediately verifies starting a long-interval
// source emits nothing right away.
func TestLongIntervalDoesNotFireImmediately(t *testing.T) {
	emitter := &stubEmitter{}
	s, err := scheduler.New(emitter, newTestLogger())
	require.NoError(t, err)
	defer s.Stop() //nolint:errcheck

	require.NoError(t, s.Start(context.Background(), []config.ScheduledSource{
		buildSource("pulse", "heartbeat"),
	}))

	events := emitter.waitForEvents(1, 100*time.Millisecond)
	assert.Empty(t, events, "hourly source must not fire at startup")
}
