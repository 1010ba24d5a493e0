package geometry

import "testing"

func mustSize(t *testing.T, s string) Size {
	t.Helper()
	sz, err := ParseSize(s)
	if err != nil {
		t.Fatalf("ParseSize(%q): %v", s, err)
	}
	return sz
}

func TestResolveCenteredPercent(t *testing.T) {
	area := UsableArea{X: 0, Y: 0, W: 1920, H: 1080}
	spec := Spec{Size: mustSize(t, "75% 60%")}

	rect, err := Resolve(spec, area)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if rect.W != 1440 || rect.H != 648 {
		t.Errorf("size = %dx%d, want 1440x648", rect.W, rect.H)
	}
	wantX, wantY := (1920-1440)/2, (1080-648)/2
	if rect.X != wantX || rect.Y != wantY {
		t.Errorf("pos = (%d,%d), want (%d,%d)", rect.X, rect.Y, wantX, wantY)
	}
}

func TestResolveOffsetAppliedLast(t *testing.T) {
	area := UsableArea{X: 0, Y: 0, W: 1000, H: 1000}
	spec := Spec{Size: mustSize(t, "50% 50%"), OffsetDX: 20, OffsetDY: -10}

	rect, err := Resolve(spec, area)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if rect.X != 250+20 || rect.Y != 250-10 {
		t.Errorf("pos = (%d,%d), want (270,240)", rect.X, rect.Y)
	}
}

func TestResolveMaxSizeClamp(t *testing.T) {
	area := UsableArea{X: 0, Y: 0, W: 2000, H: 2000}
	max := mustSize(t, "500px 400px")
	spec := Spec{Size: mustSize(t, "90% 90%"), MaxSize: &max}

	rect, err := Resolve(spec, area)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if rect.W != 500 || rect.H != 400 {
		t.Errorf("size = %dx%d, want 500x400 (clamped by max)", rect.W, rect.H)
	}
}

func TestResolveClampShiftsTowardOrigin(t *testing.T) {
	area := UsableArea{X: 100, Y: 100, W: 800, H: 600}
	pos, err := ParsePosition("750px 550px")
	if err != nil {
		t.Fatalf("ParsePosition: %v", err)
	}
	spec := Spec{Size: mustSize(t, "200px 200px"), Position: pos}

	rect, err := Resolve(spec, area)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if rect.X+rect.W > area.X+area.W || rect.Y+rect.H > area.Y+area.H {
		t.Errorf("rect %+v escapes usable area %+v", rect, area)
	}
	if rect.W != 200 || rect.H != 200 {
		t.Errorf("clamp-by-shift must not resize, got %dx%d", rect.W, rect.H)
	}
}

func TestResolveShrinkPreservingAspect(t *testing.T) {
	area := UsableArea{X: 0, Y: 0, W: 400, H: 400}
	spec := Spec{Size: Size{W: Dim{Kind: DimPixels, Value: 800}, H: Dim{Kind: DimPixels, Value: 200}}, PreserveAspect: true}

	rect, err := Resolve(spec, area)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if rect.W > area.W || rect.H > area.H {
		t.Fatalf("rect %+v still escapes area %+v", rect, area)
	}
	origRatio := 800.0 / 200.0
	gotRatio := float64(rect.W) / float64(rect.H)
	if diff := origRatio - gotRatio; diff > 0.05 || diff < -0.05 {
		t.Errorf("aspect ratio = %.3f, want ~%.3f", gotRatio, origRatio)
	}
}

func TestResolveInvalidSpec(t *testing.T) {
	area := UsableArea{W: 1000, H: 1000}
	spec := Spec{Size: Size{W: Dim{Kind: DimPixels, Value: 0}, H: Dim{Kind: DimPixels, Value: 0}}}
	if _, err := Resolve(spec, area); err == nil {
		t.Fatal("expected InvalidSpec error for zero-area size")
	}
}

func TestParseDimUnparseable(t *testing.T) {
	if _, err := ParseDim("not-a-number"); err == nil {
		t.Fatal("expected error for unparseable token")
	}
}

func TestCacheHitOnRepeat(t *testing.T) {
	c := NewCache()
	area := UsableArea{W: 1920, H: 1080}
	spec := Spec{Size: mustSize(t, "50% 50%")}
	defFP := SpecFingerprint(spec)
	monFP := MonitorFingerprint(area)

	if _, err := c.Resolve(defFP, monFP, spec, area); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if _, err := c.Resolve(defFP, monFP, spec, area); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if rate := c.HitRate(); rate != 0.5 {
		t.Errorf("hit rate = %v, want 0.5 after one miss + one hit", rate)
	}
}
