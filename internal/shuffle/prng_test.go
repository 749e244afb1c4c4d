package shuffle

import (
	"errors"
	"testing"
)

func TestNewSource(t *testing.T) {
	tests := []struct {
		name    string
		seed    string
		wantErr error
	}{
		{name: "empty seed", seed: "", wantErr: ErrEmptySeed},
		{name: "plain seed", seed: "cand-1:42"},
		{name: "zero hash", seed: "\x00"},
		{name: "long seed overflows hash", seed: "a-very-long-candidate-identifier-that-wraps-the-hash:9999"},
		{name: "unicode seed", seed: "thí-sinh:7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := NewSource(tt.seed)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewSource() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewSource() unexpected error: %v", err)
			}
			if src.state <= 0 || src.state >= modulus {
				t.Fatalf("state %d out of range", src.state)
			}
			for i := 0; i < 1000; i++ {
				f := src.Float64()
				if f < 0 || f >= 1 {
					t.Fatalf("Float64() = %v, want [0,1)", f)
				}
			}
		})
	}
}

func TestSeedState(t *testing.T) {
	tests := []struct {
		name string
		seed string
		want int64
	}{
		{name: "zero hash normalized", seed: "\x00", want: 1},
		{name: "single rune", seed: "A", want: 65},
		{name: "two runes", seed: "AB", want: 65*31 + 66},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := seedState(tt.seed); got != tt.want {
				t.Fatalf("seedState(%q) = %d, want %d", tt.seed, got, tt.want)
			}
		})
	}
}

func TestAdjacentSeedsDiverge(t *testing.T) {
	a, _ := NewSource("cand:1")
	b, _ := NewSource("cand:2")
	fa, fb := a.Float64(), b.Float64()
	diff := fa - fb
	if diff < 0 {
		diff = -diff
	}
	if diff < 1e-3 {
		t.Fatalf("first values too close: %v vs %v", fa, fb)
	}
}

func TestSourceDeterministic(t *testing.T) {
	a, _ := NewSource("cand-7:3")
	b, _ := NewSource("cand-7:3")
	c, _ := NewSource("cand-8:3")

	same := true
	for i := 0; i < 100; i++ {
		x, y, z := a.Float64(), b.Float64(), c.Float64()
		if x != y {
			t.Fatalf("step %d: %v != %v for identical seeds", i, x, y)
		}
		if x != z {
			same = false
		}
	}
	if same {
		t.Fatal("different seeds produced identical streams")
	}
}

func TestIntn(t *testing.T) {
	src, _ := NewSource("intn")
	for i := 0; i < 500; i++ {
		if v := src.Intn(5); v < 0 || v >= 5 {
			t.Fatalf("Intn(5) = %d", v)
		}
	}
	if v := src.Intn(1); v != 0 {
		t.Fatalf("Intn(1) = %d, want 0", v)
	}
}

func TestPermute(t *testing.T) {
	tests := []struct {
		name  string
		items []string
	}{
		{name: "empty", items: []string{}},
		{name: "single", items: []string{"a"}},
		{name: "four", items: []string{"a", "b", "c", "d"}},
		{name: "with duplicates", items: []string{"x", "x", "y", "z", "z"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := append([]string(nil), tt.items...)
			src, _ := NewSource("permute:" + tt.name)

			got := Permute(tt.items, src)

			for i := range original {
				if tt.items[i] != original[i] {
					t.Fatalf("input mutated at %d", i)
				}
			}
			if len(got) != len(original) {
				t.Fatalf("len = %d, want %d", len(got), len(original))
			}
			counts := map[string]int{}
			for _, s := range original {
				counts[s]++
			}
			for _, s := range got {
				counts[s]--
			}
			for k, n := range counts {
				if n != 0 {
					t.Fatalf("element %q count off by %d", k, n)
				}
			}
		})
	}
}

func TestPermReproducible(t *testing.T) {
	a, _ := NewSource("perm")
	b, _ := NewSource("perm")
	p1, p2 := Perm(10, a), Perm(10, b)

	seen := make([]bool, 10)
	for i := range p1 {
		if p1[i] != p2[i] {
			t.Fatalf("Perm differs at %d: %v vs %v", i, p1, p2)
		}
		if seen[p1[i]] {
			t.Fatalf("index %d repeated in %v", p1[i], p1)
		}
		seen[p1[i]] = true
	}
}

func TestPermCoversAllOrderings(t *testing.T) {
	// 3 elements have 6 orderings; a reasonable generator should reach all of them.
	seen := map[[3]int]bool{}
	for i := 0; i < 300; i++ {
		src, _ := NewSource("cover:" + Label(i))
		p := Perm(3, src)
		seen[[3]int{p[0], p[1], p[2]}] = true
	}
	if len(seen) != 6 {
		t.Fatalf("reached %d of 6 orderings", len(seen))
	}
}
