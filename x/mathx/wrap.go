package mathx

import "golang.org/x/exp/constraints"

// WrapAdd returns (v + step) mod period. period==0 yields 0.
// Intermediates are widened to uint64 so v+step cannot overflow T.
func WrapAdd[T constraints.Unsigned](v, step, period T) T {
	if period == 0 {
		return 0
	}
	return T((uint64(v) + uint64(step)) % uint64(period))
}
