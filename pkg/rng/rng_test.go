package rng

import "testing"

func TestRNG_Deterministic(t *testing.T) {
	a := New(42)
	b := New(42)

	for i := 0; i < 50; i++ {
		if x, y := a.Intn(27), b.Intn(27); x != y {
			t.Fatalf("draw %d: got %d and %d from same seed", i, x, y)
		}
	}
}

func TestRNG_Intn_Range(t *testing.T) {
	r := New(99)
	for i := 0; i < 1000; i++ {
		if v := r.Intn(3); v < 0 || v > 2 {
			t.Fatalf("Intn(3) out of range: %d", v)
		}
	}
}

func TestRNG_Intn_DegenerateDoesNotDraw(t *testing.T) {
	r := New(1)
	if r.Intn(1) != 0 || r.Intn(0) != 0 {
		t.Fatal("degenerate Intn should return 0")
	}
	if r.Position() != 0 {
		t.Fatalf("expected position 0, got %d", r.Position())
	}
}

func TestRNG_Range(t *testing.T) {
	r := New(7)
	for i := 0; i < 1000; i++ {
		v := r.Range(-10, 10)
		if v < -10 || v >= 10 {
			t.Fatalf("Range out of bounds: %f", v)
		}
	}
}

func TestRNG_Shuffle_IsPermutation(t *testing.T) {
	r := New(5)
	values := []int{0, 1, 2, 3, 4, 5, 6, 7}
	r.Shuffle(len(values), func(i, j int) { values[i], values[j] = values[j], values[i] })

	seen := make(map[int]bool)
	for _, v := range values {
		seen[v] = true
	}
	if len(seen) != 8 {
		t.Fatalf("shuffle lost elements: %v", values)
	}
}

func TestRNG_Shuffle_MovesFirstSlot(t *testing.T) {
	r := New(11)
	counts := [3]int{}
	for i := 0; i < 3000; i++ {
		values := []int{0, 1, 2}
		r.Shuffle(3, func(i, j int) { values[i], values[j] = values[j], values[i] })
		counts[values[0]]++
	}
	for v, c := range counts {
		if c < 800 || c > 1200 {
			t.Errorf("value %d landed first %d times, expected ~1000", v, c)
		}
	}
}

func TestRNG_Restore_MatchesPosition(t *testing.T) {
	r := New(42)
	for i := 0; i < 10; i++ {
		r.Intn(6)
	}

	var expected [5]int
	for i := range expected {
		expected[i] = r.Intn(6)
	}

	restored := Restore(42, 10)
	if restored.Position() != 10 {
		t.Fatalf("expected position 10, got %d", restored.Position())
	}
	for i, want := range expected {
		if got := restored.Intn(6); got != want {
			t.Fatalf("draw %d: expected %d, got %d", i, want, got)
		}
	}
}
