package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeConstantSamples(t *testing.T) {
	s := Summarize([]float64{100, 100, 100, 100})
	assert.Equal(t, 100.0, s.Median)
	assert.Equal(t, 0.0, s.MedianAbsDev)
	assert.Equal(t, 100.0, s.Min)
	assert.Equal(t, 100.0, s.Max)
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestSummarizeSpread(t *testing.T) {
	s := Summarize([]float64{10, 20, 30, 40, 50})
	assert.Equal(t, 30.0, s.Median)
	assert.Equal(t, 10.0, s.Min)
	assert.Equal(t, 50.0, s.Max)
	assert.InDelta(t, 30.0, s.Mean, 0.0001)
}

func TestWinsorizeClipsOutliers(t *testing.T) {
	samples := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 1000}
	Winsorize(samples, 5.0)
	// The 95th percentile sits at rank 0.95*9 = 8.55, interpolated between 9
	// and 1000: 9 + 991*0.55 = 554.05.
	for _, s := range samples {
		assert.LessOrEqual(t, s, 554.05)
	}
}

func TestMBPerSec(t *testing.T) {
	// 1MiB per 1 second (1e9 ns) should be ~1 MB/s.
	mb := MBPerSec(1024*1024, 1e9)
	assert.InDelta(t, 1.0, mb, 0.001)
}
