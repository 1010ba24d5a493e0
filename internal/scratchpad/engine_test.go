package scratchpad

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"github.com/hyprplug/hyprplugd/internal/compositor"
	"github.com/hyprplug/hyprplugd/internal/config"
	"github.com/hyprplug/hyprplugd/internal/errs"
	"github.com/hyprplug/hyprplugd/internal/geometry"
)

// fakeClock is a manually advanced Clock: AfterFunc schedules are only
// evaluated (in registration order) when Advance is called, so hysteresis
// and spawn-timeout tests never depend on real wall-clock sleeps.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	fireAt  time.Time
	fn      func()
	stopped bool
}

func newFakeClock() *fakeClock { return &fakeClock{now: time.Unix(0, 0)} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{fireAt: c.now.Add(d), fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	if t.stopped {
		return false
	}
	t.stopped = true
	return true
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	due := make([]*fakeTimer, 0)
	for _, t := range c.timers {
		if !t.stopped && !t.fireAt.After(c.now) {
			t.stopped = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	for _, t := range due {
		t.fn()
	}
}

// fakeSiblings is an in-memory Siblings registry for tests.
type fakeSiblings map[string]*State

func (f fakeSiblings) Lookup(name string) (*State, bool) { s, ok := f[name]; return s, ok }
func (f fakeSiblings) Names() []string {
	names := make([]string, 0, len(f))
	for k := range f {
		names = append(names, k)
	}
	return names
}

// newFakeGateway builds a Gateway whose request socket is served by an
// in-memory responder: "j/monitors" returns one fixed monitor, "j/workspaces"
// returns an empty list, anything else (dispatch lines) gets "ok".
func newFakeGateway(t *testing.T) *compositor.Gateway {
	t.Helper()
	dial := func(ctx context.Context) (net.Conn, error) {
		client, server := net.Pipe()
		go func() {
			defer server.Close()
			buf := make([]byte, 4096)
			n, err := server.Read(buf)
			if err != nil {
				return
			}
			cmd := string(buf[:n])
			var resp string
			switch cmd {
			case "j/monitors":
				resp = `[{"name":"eDP-1","x":0,"y":0,"width":1920,"height":1080,"scale":1,"activeWorkspace":{"name":"1"},"focused":true,"reserved":[0,0,0,0]}]`
			case "j/workspaces":
				resp = `[]`
			default:
				resp = "ok"
			}
			server.Write([]byte(resp))
		}()
		return client, nil
	}
	noEvents := func(ctx context.Context) (net.Conn, error) {
		return nil, errors.New("events socket not used in this test")
	}
	return compositor.NewWithDialers(dial, noEvents, hclog.NewNullLogger())
}

func termDef(name string) config.Definition {
	return config.Definition{
		Name:         name,
		Command:      "foot",
		MatchClass:   "foot",
		Size:         "50% 50%",
		MaxInstances: 1,
		SmartFocus:   true,
	}
}

func newTestEngine(t *testing.T) (*Engine, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	eng := NewEngine(newFakeGateway(t), geometry.NewCache(), clock, hclog.NewNullLogger())
	return eng, clock
}

func TestShowSpawnsAndCompletesOnMatchingWindow(t *testing.T) {
	eng, _ := newTestEngine(t)
	st := NewState(termDef("term"))
	sib := fakeSiblings{"term": st}

	resultCh := make(chan struct {
		text string
		err  error
	}, 1)
	go func() {
		text, err := eng.Show(context.Background(), st, sib)
		resultCh <- struct {
			text string
			err  error
		}{text, err}
	}()

	// Give the spawn goroutine time to dispatch and arm the pending spawn.
	deadline := time.After(2 * time.Second)
	for {
		st.mu.Lock()
		ready := st.Phase == Spawning && st.pendingSpawn != nil
		st.mu.Unlock()
		if ready {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for spawn to arm")
		case <-time.After(time.Millisecond):
		}
	}

	matched := eng.HandleWindowOpened(context.Background(), st, sib, compositor.Window{Handle: "0x1", Class: "foot", PID: 0})
	if !matched {
		t.Fatal("expected window to match the pending spawn")
	}

	res := <-resultCh
	if res.err != nil {
		t.Fatalf("Show: %v", res.err)
	}
	if res.text != "term shown" {
		t.Errorf("text = %q, want %q", res.text, "term shown")
	}
	snap := st.Snapshot()
	if snap.Phase != Shown {
		t.Errorf("phase = %v, want Shown", snap.Phase)
	}
	if len(snap.Instances) != 1 || !snap.Instances[0].Visible {
		t.Fatalf("instances = %+v, want one visible instance", snap.Instances)
	}
}

func TestToggleHidesWhenShown(t *testing.T) {
	eng, _ := newTestEngine(t)
	st := NewState(termDef("term"))
	st.Instances = []*Instance{{Handle: "0x1", Visible: true}}
	st.Phase = Shown
	sib := fakeSiblings{"term": st}

	text, err := eng.Toggle(context.Background(), st, sib)
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if text != "term hidden" {
		t.Errorf("text = %q, want %q", text, "term hidden")
	}
	if st.Snapshot().Phase != Hidden {
		t.Errorf("phase = %v, want Hidden", st.Snapshot().Phase)
	}
}

func TestDuplicateOperationRejected(t *testing.T) {
	eng, _ := newTestEngine(t)
	st := NewState(termDef("term"))
	sib := fakeSiblings{"term": st}

	if !st.beginOp("already-running") {
		t.Fatal("setup: beginOp should succeed once")
	}

	_, err := eng.Show(context.Background(), st, sib)
	if !errors.Is(err, errs.Duplicate) {
		t.Fatalf("err = %v, want errs.Duplicate", err)
	}
}

func TestHysteresisFiresHideAfterTimeout(t *testing.T) {
	eng, clock := newTestEngine(t)
	def := termDef("term")
	def.Unfocus = config.UnfocusHide
	def.Hysteresis = time.Second
	st := NewState(def)
	st.Instances = []*Instance{{Handle: "0x1", Visible: true}}
	st.Phase = Shown
	sib := fakeSiblings{"term": st}

	eng.HandleActiveWindowChanged(context.Background(), st, sib, "0xother", "")
	if st.Snapshot().Phase != Shown {
		t.Fatalf("phase changed before hysteresis elapsed")
	}

	clock.Advance(2 * time.Second)

	deadline := time.After(2 * time.Second)
	for {
		if st.Snapshot().Phase == Hidden {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for hysteresis hide")
		case <-time.After(time.Millisecond):
		}
	}
}

func TestHysteresisCancelledByOwnWindowFocus(t *testing.T) {
	eng, clock := newTestEngine(t)
	def := termDef("term")
	def.Unfocus = config.UnfocusHide
	def.Hysteresis = time.Second
	st := NewState(def)
	st.Instances = []*Instance{{Handle: "0x1", Visible: true}}
	st.Phase = Shown
	sib := fakeSiblings{"term": st}

	eng.HandleActiveWindowChanged(context.Background(), st, sib, "0xother", "")
	eng.HandleActiveWindowChanged(context.Background(), st, sib, "0x1", "term")

	clock.Advance(2 * time.Second)
	time.Sleep(20 * time.Millisecond)

	if st.Snapshot().Phase != Shown {
		t.Errorf("phase = %v, want Shown (timer should have been cancelled)", st.Snapshot().Phase)
	}
}

func TestShowSpawnTimeoutReturnsToDormant(t *testing.T) {
	eng, clock := newTestEngine(t)
	def := termDef("editor")
	def.Command = "never-opens-a-window"
	st := NewState(def)
	sib := fakeSiblings{"editor": st}

	resultCh := make(chan struct {
		text string
		err  error
	}, 1)
	go func() {
		text, err := eng.Show(context.Background(), st, sib)
		resultCh <- struct {
			text string
			err  error
		}{text, err}
	}()

	deadline := time.After(2 * time.Second)
	for {
		st.mu.Lock()
		ready := st.Phase == Spawning && st.pendingSpawn != nil
		st.mu.Unlock()
		if ready {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for spawn to arm")
		case <-time.After(time.Millisecond):
		}
	}

	clock.Advance(spawnTimeout + time.Second)

	res := <-resultCh
	if res.err == nil {
		t.Fatal("expected an error after spawn timeout")
	}
	if res.err.Error() != "editor: spawn timed out" {
		t.Errorf("err = %q, want %q", res.err.Error(), "editor: spawn timed out")
	}
	if !errors.Is(res.err, errs.SpawnFailed) {
		t.Errorf("err should be errs.SpawnFailed, got %v", res.err)
	}

	snap := st.Snapshot()
	if snap.Phase != Dormant {
		t.Errorf("phase = %v, want Dormant", snap.Phase)
	}
	if len(snap.Instances) != 0 {
		t.Errorf("instances = %+v, want none attributed", snap.Instances)
	}
}

func TestExcludesHideSiblingAndRestoreOnHide(t *testing.T) {
	eng, _ := newTestEngine(t)

	defA := termDef("a")
	defA.RestoreExcluded = true
	defA.Excludes = []string{"b"}
	stA := NewState(defA)

	stB := NewState(termDef("b"))
	stB.Instances = []*Instance{{Handle: "0xB", Visible: true}}
	stB.Phase = Shown

	sib := fakeSiblings{"a": stA, "b": stB}

	resultCh := make(chan struct {
		text string
		err  error
	}, 1)
	go func() {
		text, err := eng.Show(context.Background(), stA, sib)
		resultCh <- struct {
			text string
			err  error
		}{text, err}
	}()

	deadline := time.After(2 * time.Second)
	for {
		stA.mu.Lock()
		ready := stA.Phase == Spawning && stA.pendingSpawn != nil
		stA.mu.Unlock()
		if ready {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for spawn to arm")
		case <-time.After(time.Millisecond):
		}
	}

	if !eng.HandleWindowOpened(context.Background(), stA, sib, compositor.Window{Handle: "0xA", Class: "foot"}) {
		t.Fatal("expected window to match")
	}
	res := <-resultCh
	if res.err != nil {
		t.Fatalf("Show(a): %v", res.err)
	}

	if stB.Snapshot().Phase != Hidden {
		t.Fatalf("b phase = %v, want Hidden (excluded by a's show)", stB.Snapshot().Phase)
	}

	if _, err := eng.Hide(context.Background(), stA, sib); err != nil {
		t.Fatalf("Hide(a): %v", err)
	}

	deadline = time.After(2 * time.Second)
	for {
		if stB.Snapshot().Phase == Shown {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for b to be restored")
		case <-time.After(time.Millisecond):
		}
	}
}
