package compositor

import "testing"

func TestBackoffDoublesAndCaps(t *testing.T) {
	b := newBackoff()
	want := []int64{100, 200, 400, 800, 1600, 3200, 5000, 5000, 5000, 5000}
	for i, w := range want {
		delay, ok := b.next()
		if !ok {
			t.Fatalf("attempt %d: expected ok=true", i)
		}
		if ms := delay.Milliseconds(); ms != w {
			t.Errorf("attempt %d: delay = %dms, want %dms", i, ms, w)
		}
	}
	if _, ok := b.next(); ok {
		t.Fatal("expected ceiling to be reached after 10 attempts")
	}
}

func TestBackoffReset(t *testing.T) {
	b := newBackoff()
	b.next()
	b.next()
	b.reset()
	delay, ok := b.next()
	if !ok || delay.Milliseconds() != 100 {
		t.Fatalf("after reset: delay=%v ok=%v, want 100ms/true", delay, ok)
	}
}
