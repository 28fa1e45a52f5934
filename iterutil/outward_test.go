package iterutil_test

import (
	"slices"
	"testing"

	"github.com/stagekit/stagekit/iterutil"
)

func collect(center, window, n int) []int {
	var out []int
	for i := range iterutil.Outward(center, window, n) {
		out = append(out, i)
	}
	return out
}

func TestOutward(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		center int
		window int
		n      int
		want   []int
	}{
		{"mid_list", 5, 2, 10, []int{6, 4, 7, 3}},
		{"at_start", 0, 2, 10, []int{1, 2}},
		{"at_end", 9, 2, 10, []int{8, 7}},
		{"window_exceeds_list", 1, 5, 3, []int{2, 0}},
		{"single_element", 0, 3, 1, nil},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			if got := collect(test.center, test.window, test.n); !slices.Equal(got, test.want) {
				t.Errorf("expected %v, got %v", test.want, got)
			}
		})
	}
}
