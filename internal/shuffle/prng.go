package shuffle

import "errors"

// Park-Miller minimal standard generator parameters.
const (
	modulus    int64 = 2147483647 // 2^31 - 1
	multiplier int64 = 16807

	// Seeds that differ only in their last rune start on adjacent states, and the first
	// outputs of adjacent states are nearly equal.
	warmupSteps = 8
)

var ErrEmptySeed = errors.New("seed must not be empty")

// Source is a deterministic pseudo-random stream derived from a seed string. The same
// seed produces the same sequence on every platform and every run. It is not safe for
// concurrent use and is not suitable for anything that must stay secret.
type Source struct {
	state int64
}

// NewSource folds seed into a 32-bit multiplicative hash and uses it as the initial
// generator state.
func NewSource(seed string) (*Source, error) {
	if seed == "" {
		return nil, ErrEmptySeed
	}

	src := &Source{state: seedState(seed)}
	for i := 0; i < warmupSteps; i++ {
		src.next()
	}
	return src, nil
}

func seedState(seed string) int64 {
	var h int32
	for _, r := range seed {
		h = h*31 + int32(r) // wraps on overflow
	}

	state := int64(h)
	if state < 0 {
		state = -state
	}
	state %= modulus
	if state == 0 {
		// zero is a fixed point of the multiplicative step
		state = 1
	}
	return state
}

func (s *Source) next() int64 {
	s.state = s.state * multiplier % modulus
	return s.state
}

// Float64 returns the next value in [0, 1).
func (s *Source) Float64() float64 {
	return float64(s.next()-1) / float64(modulus-1)
}

// Intn returns the next value in [0, n). It panics if n <= 0.
func (s *Source) Intn(n int) int {
	if n <= 0 {
		panic("shuffle: invalid argument to Intn")
	}
	i := int(s.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

// Permute returns a Fisher-Yates shuffled copy of items. items is not modified.
func Permute[T any](items []T, src *Source) []T {
	out := make([]T, len(items))
	copy(out, items)
	for i := len(out) - 1; i > 0; i-- {
		j := src.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Perm returns a permutation of the indices 0..n-1.
func Perm(n int, src *Source) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return Permute(idx, src)
}
