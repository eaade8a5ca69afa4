package sliceutil

import "iter"

// OuterJoin walks two slices sorted by the same key and yields them pairwise.
// cmp returns a negative value when a sorts first, zero when the two match,
// and a positive value when b sorts first. An element without a partner is
// yielded next to the zero value of the other type.
func OuterJoin[A, B any](a []A, b []B, cmp func(A, B) int) iter.Seq2[A, B] {
	return func(yield func(A, B) bool) {
		var zeroA A
		var zeroB B
		i, j := 0, 0
		for i < len(a) && j < len(b) {
			c := cmp(a[i], b[j])
			var ok bool
			switch {
			case c == 0:
				ok = yield(a[i], b[j])
				i++
				j++
			case c < 0:
				ok = yield(a[i], zeroB)
				i++
			default:
				ok = yield(zeroA, b[j])
				j++
			}
			if !ok {
				return
			}
		}
		for ; i < len(a); i++ {
			if !yield(a[i], zeroB) {
				return
			}
		}
		for ; j < len(b); j++ {
			if !yield(zeroA, b[j]) {
				return
			}
		}
	}
}
