package iterutil

import (
	"iter"
)

// Outward yields indices around center in alternating next/previous order
// (center+1, center-1, center+2, center-2, ...), expanding up to window
// positions each way and skipping anything outside [0, n).
func Outward(center, window, n int) iter.Seq[int] {
	return func(yield func(int) bool) {
		for d := 1; d <= window; d++ {
			if i := center + d; i < n {
				if !yield(i) {
					return
				}
			}
			if i := center - d; i >= 0 {
				if !yield(i) {
					return
				}
			}
		}
	}
}
