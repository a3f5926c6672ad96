package dino

import (
	"errors"
	"testing"
)

func TestOverlaps(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 10, H: 10}
	cases := []struct {
		b    Rect
		want bool
	}{
		{Rect{X: 5, Y: 5, W: 10, H: 10}, true},
		{Rect{X: 10, Y: 0, W: 5, H: 5}, false},
		{Rect{X: 0, Y: 10, W: 5, H: 5}, false},
		{Rect{X: -5, Y: -5, W: 6, H: 6}, true},
		{Rect{X: 20, Y: 20, W: 1, H: 1}, false},
	}
	for _, tc := range cases {
		if got := a.Overlaps(tc.b); got != tc.want {
			t.Errorf("Overlaps(%+v)=%v want %v", tc.b, got, tc.want)
		}
	}
}

func TestCactusWidth(t *testing.T) {
	cases := map[float64]float64{0: 34, 0.7: 34, 0.71: 69, 0.9: 69, 0.95: 102}
	for chance, want := range cases {
		if got := CactusWidth(chance); got != want {
			t.Errorf("CactusWidth(%v)=%v want %v", chance, got, want)
		}
	}
}

func TestJumpOnlyWhenGrounded(t *testing.T) {
	w := NewWorld(1)
	if !w.Jump() {
		t.Fatal("grounded dino should jump")
	}
	if w.Jump() {
		t.Fatal("second press before the frame should be ignored")
	}
	w.Step()
	if w.Dino.Y >= GroundY {
		t.Fatalf("dino should be airborne, y=%v", w.Dino.Y)
	}
	if w.Jump() {
		t.Fatal("airborne dino must not jump")
	}
	for i := 0; i < 60 && !w.Grounded(); i++ {
		w.Step()
	}
	if !w.Grounded() || w.Dino.Y != GroundY {
		t.Fatalf("dino should land, y=%v vy=%v", w.Dino.Y, w.VelocityY)
	}
}

func TestCrashWithoutJumping(t *testing.T) {
	// First cactus spawns on frame 72 and reaches the dino 94 moves later.
	res, err := Simulate(42, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Crashed || res.Frames != 165 || res.Score != 164 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestJumpClearsSmallCactus(t *testing.T) {
	w := NewWorld(1)
	w.spawnEvery = 0
	w.Cacti = []Rect{{X: CactusX, Y: GroundY, W: 34, H: CactusHeight}}

	for w.Frame < 200 {
		if w.Frame+1 == 80 && !w.Jump() {
			t.Fatal("jump refused")
		}
		if !w.Step() {
			t.Fatalf("crashed on frame %d at y=%v", w.Frame, w.Dino.Y)
		}
	}
	if w.Score != 200 || len(w.Cacti) != 0 {
		t.Fatalf("unexpected end state score=%d cacti=%d", w.Score, len(w.Cacti))
	}
}

func TestJumpTooLateCrashes(t *testing.T) {
	w := NewWorld(1)
	w.spawnEvery = 0
	w.Cacti = []Rect{{X: CactusX, Y: GroundY, W: 34, H: CactusHeight}}
	for w.Step() {
		if w.Frame+1 == 90 {
			w.Jump()
		}
	}
	if !w.Over || w.Score >= 113 {
		t.Fatalf("expected crash while rising, frame=%d score=%d", w.Frame, w.Score)
	}
	if w.Step() {
		t.Fatal("finished run must not step")
	}
}

func TestSimulateDeterministic(t *testing.T) {
	jumps := []int{151, 151, 160, 300, 450}
	a, err := Simulate(7, jumps, 1000)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := Simulate(7, jumps, 1000)
	if a != b {
		t.Fatalf("replay differs: %+v vs %+v", a, b)
	}
	if a.Jumps == 0 || a.Jumps > 3 {
		t.Fatalf("airborne and duplicate presses should not count: %+v", a)
	}
}

func TestSimulateMaxFrames(t *testing.T) {
	res, err := Simulate(3, nil, 50)
	if err != nil {
		t.Fatal(err)
	}
	if res.Crashed || res.Frames != 50 || res.Score != 50 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestSimulateRejectsBadJumps(t *testing.T) {
	for _, jumps := range [][]int{{0}, {-1}, {10, 5}} {
		if _, err := Simulate(1, jumps, 100); !errors.Is(err, ErrInvalidJumps) {
			t.Errorf("jumps %v: expected ErrInvalidJumps, got %v", jumps, err)
		}
	}
}
