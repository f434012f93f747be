// Package rng implements the deterministic subtractive random number
// generator that drives layout generation.
//
// The generator is Knuth's subtractive method (TAOCP vol. 2, 3.6) with the
// 55-element lagged table and seeding procedure of the classic ran3 routine.
// The algorithm is fully specified by this package, so a seed produces the
// same stream on every platform and Go release, which math/rand does not
// promise across versions.
//
// A [Random] is not safe for concurrent use. Each generation run owns one.
package rng

import (
	"math"
	"math/rand"
)

const (
	mbig  = math.MaxInt32
	mseed = 161803398
	size  = 56
)

// Random is a subtractive pseudorandom number generator.
type Random struct {
	table  [size]int32
	inext  int
	inextp int
	draws  uint64
}

var _ rand.Source = (*Random)(nil)

// New returns a generator seeded with seed.
func New(seed int64) *Random {
	r := &Random{}
	r.Seed(seed)
	return r
}

// Seed resets the generator state from seed. Only the low 32 bits of seed
// take part; negative seeds use their absolute value.
func (r *Random) Seed(seed int64) {
	s := int32(seed)
	var sub int32
	if s == math.MinInt32 {
		sub = math.MaxInt32
	} else if s < 0 {
		sub = -s
	} else {
		sub = s
	}

	mj := int32(mseed) - sub
	r.table = [size]int32{}
	r.table[55] = mj
	mk := int32(1)
	for i := 1; i < 55; i++ {
		ii := (21 * i) % 55
		r.table[ii] = mk
		mk = mj - mk
		if mk < 0 {
			mk += mbig
		}
		mj = r.table[ii]
	}
	for k := 1; k < 5; k++ {
		for i := 1; i < size; i++ {
			r.table[i] -= r.table[1+(i+30)%55]
			if r.table[i] < 0 {
				r.table[i] += mbig
			}
		}
	}
	r.inext = 0
	r.inextp = 21
	r.draws = 0
}

// sample returns the next raw value in [0, MaxInt32).
func (r *Random) sample() int32 {
	next := r.inext + 1
	if next >= size {
		next = 1
	}
	nextp := r.inextp + 1
	if nextp >= size {
		nextp = 1
	}

	v := r.table[next] - r.table[nextp]
	if v == mbig {
		v--
	}
	if v < 0 {
		v += mbig
	}
	r.table[next] = v
	r.inext = next
	r.inextp = nextp
	r.draws++
	return v
}

// Draws returns how many raw samples have been consumed since seeding.
func (r *Random) Draws() uint64 { return r.draws }

// Next returns a non-negative value in [0, MaxInt32).
func (r *Random) Next() int { return int(r.sample()) }

// Float64 returns a value in [0.0, 1.0).
func (r *Random) Float64() float64 {
	return float64(r.sample()) * (1.0 / mbig)
}

// Intn returns a value in [0, n). It returns 0 when n <= 0.
func (r *Random) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.Float64() * float64(n))
}

// Range returns a value in [lo, hi). It returns lo when hi <= lo.
func (r *Random) Range(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.Intn(hi-lo)
}

// Int63 returns a non-negative 62-bit value built from two samples.
// It satisfies [math/rand.Source].
func (r *Random) Int63() int64 {
	hi := int64(r.sample())
	lo := int64(r.sample())
	return hi<<31 | lo
}

// Shuffle pseudo-randomizes the order of n elements with a Fisher-Yates
// pass from the back, calling swap for each exchange. It draws exactly
// n-1 samples.
func (r *Random) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		swap(i, j)
	}
}

// Clone returns an independent generator with identical state.
func (r *Random) Clone() *Random {
	c := *r
	return &c
}
