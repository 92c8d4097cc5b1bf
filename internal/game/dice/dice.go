// Package dice provides the randomness abstraction shared by pickup placement,
// respawn timers, AI mistakes, and AI loadout selection.
package dice

// Source is the randomness provider for the simulation.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
	// Float64 returns a random float in [0.0, 1.0).
	Float64() float64
}

// Between returns a uniform int in the closed interval [lo, hi].
//
// Precondition: lo <= hi; src must be non-nil.
// Postcondition: lo <= result <= hi.
func Between(src Source, lo, hi int) int {
	if hi < lo {
		panic("dice: Between called with hi < lo")
	}
	return lo + src.Intn(hi-lo+1)
}

// Sign returns -1 or +1 with equal probability.
func Sign(src Source) int {
	if src.Intn(2) == 0 {
		return -1
	}
	return 1
}

// Pick returns a uniform index into a collection of length n.
//
// Precondition: n > 0.
func Pick(src Source, n int) int {
	return src.Intn(n)
}
