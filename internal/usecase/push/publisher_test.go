package push

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/pixoolab/divoom-bridge/internal/domain"
	"github.com/pixoolab/divoom-bridge/internal/settings"
)

type fakeSource struct {
	mu      sync.Mutex
	collects int
	metrics  domain.Metrics
}

func (f *fakeSource) Collect(context.Context) domain.Metrics {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.collects++
	return f.metrics
}

func (f *fakeSource) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.collects
}

type fakeSink struct {
	mu    sync.Mutex
	calls []sinkCall
}

type sinkCall struct {
	ip       string
	lcdIndex int
	dispData []string
}

func (f *fakeSink) SendPCMetrics(_ context.Context, ip string, lcdIndex int, dispData []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, sinkCall{ip: ip, lcdIndex: lcdIndex, dispData: dispData})
	return nil
}

func (f *fakeSink) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeSink) lastCall(t *testing.T) sinkCall {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		t.Fatal("no pushes recorded")
	}
	return f.calls[len(f.calls)-1]
}

type fakeSettings struct {
	cfg settings.Settings
}

func (f *fakeSettings) Get() settings.Settings { return f.cfg }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRenderDispData(t *testing.T) {
	t.Parallel()

	m := domain.Metrics{
		CPUUsage:       42.4,
		CPUTemperature: domain.Float(55.6),
		GPUUsage:       domain.Float(12.0),
		GPUTemperature: domain.Float(61.2),
		MemoryTotal:    16 * 1024 * 1024 * 1024,
		MemoryUsed:     8 * 1024 * 1024 * 1024,
	}

	got := RenderDispData(m)
	want := []string{"42%", "56C", "12%", "61C", "50%"}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRenderDispDataAbsentFields(t *testing.T) {
	t.Parallel()

	got := RenderDispData(domain.Metrics{CPUUsage: 10})
	want := []string{"10%", "--", "--", "--", "--"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLoopPushesToConfiguredDevice(t *testing.T) {
	t.Parallel()

	source := &fakeSource{metrics: domain.Metrics{CPUUsage: 30}}
	sink := &fakeSink{}
	cfg := &fakeSettings{cfg: settings.Settings{
		DeviceIP:    "192.168.1.50",
		PushEnabled: true,
		PushScreen:  2,
	}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := NewPublisher(source, sink, cfg, 10*time.Millisecond, testLogger())
	p.Start(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for sink.callCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("publisher never pushed")
		}
		time.Sleep(5 * time.Millisecond)
	}

	call := sink.lastCall(t)
	if call.ip != "192.168.1.50" {
		t.Errorf("pushed to %q", call.ip)
	}
	if call.lcdIndex != 2 {
		t.Errorf("pushed to screen %d, want 2", call.lcdIndex)
	}
	if call.dispData[0] != "30%" {
		t.Errorf("unexpected cpu entry %q", call.dispData[0])
	}
}

func TestLoopSkipsWhenPushDisabled(t *testing.T) {
	t.Parallel()

	source := &fakeSource{}
	sink := &fakeSink{}
	cfg := &fakeSettings{cfg: settings.Settings{
		DeviceIP:    "192.168.1.50",
		PushEnabled: false,
	}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := NewPublisher(source, sink, cfg, 10*time.Millisecond, testLogger())
	p.Start(ctx)

	time.Sleep(100 * time.Millisecond)
	if source.count() != 0 {
		t.Error("collected metrics while pushing is disabled")
	}
	if sink.callCount() != 0 {
		t.Error("pushed while pushing is disabled")
	}
}

func TestLoopSkipsWithoutDevice(t *testing.T) {
	t.Parallel()

	source := &fakeSource{}
	sink := &fakeSink{}
	cfg := &fakeSettings{cfg: settings.Settings{PushEnabled: true}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := NewPublisher(source, sink, cfg, 10*time.Millisecond, testLogger())
	p.Start(ctx)

	time.Sleep(100 * time.Millisecond)
	if sink.callCount() != 0 {
		t.Error("pushed without a configured device")
	}
}
