package alignment

import (
	"testing"

	"collapse-mapper/pkg/geometry"

	"github.com/stretchr/testify/assert"
)

func TestRatioFilterStrictInequality(t *testing.T) {
	cases := []struct {
		name   string
		best   float64
		second float64
		kept   bool
	}{
		{"well below ratio", 10, 100, true},
		{"just below ratio", 69.999, 100, true},
		{"exactly at ratio", 70, 100, false},
		{"above ratio", 71, 100, false},
		{"equal distances", 50, 50, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := []Candidate{{Best: tc.best, Second: tc.second}}
			out := RatioFilter(in, 0.7)
			if tc.kept {
				assert.Len(t, out, 1)
			} else {
				assert.Empty(t, out)
			}
		})
	}
}

func TestRatioFilterPreservesOrder(t *testing.T) {
	in := []Candidate{
		{Src: geometry.Point2D{X: 1}, Best: 1, Second: 10},
		{Src: geometry.Point2D{X: 2}, Best: 9, Second: 10},
		{Src: geometry.Point2D{X: 3}, Best: 2, Second: 10},
	}
	out := RatioFilter(in, 0.7)
	assert.Len(t, out, 2)
	assert.Equal(t, 1.0, out[0].Src.X)
	assert.Equal(t, 3.0, out[1].Src.X)
}

func TestSplitPoints(t *testing.T) {
	in := []Candidate{
		{Src: geometry.Point2D{X: 1, Y: 2}, Dst: geometry.Point2D{X: 3, Y: 4}},
		{Src: geometry.Point2D{X: 5, Y: 6}, Dst: geometry.Point2D{X: 7, Y: 8}},
	}
	src, dst := splitPoints(in)
	assert.Equal(t, []geometry.Point2D{{X: 1, Y: 2}, {X: 5, Y: 6}}, src)
	assert.Equal(t, []geometry.Point2D{{X: 3, Y: 4}, {X: 7, Y: 8}}, dst)
}
