// Package stats computes robust descriptive statistics over benchmark
// sample sets, grounded on the upstream bench.rs adaptive-sampling loop
// (median, median absolute deviation, winsorized outlier clipping).
package stats

import (
	"math"
	"sort"
)

// Summary is the pure statistical result of one set of timing samples, in
// nanoseconds per iteration.
type Summary struct {
	Mean           float64
	Median         float64
	MedianAbsDev   float64
	MedianAbsDevPct float64
	StdDev         float64
	Min            float64
	Max            float64
}

// Summarize computes a Summary over the given samples. The input slice is
// not mutated; internally a sorted copy is used for order statistics.
func Summarize(samples []float64) Summary {
	if len(samples) == 0 {
		return Summary{}
	}

	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)

	min := sorted[0]
	max := sorted[len(sorted)-1]

	var sum float64
	for _, s := range samples {
		sum += s
	}
	mean := sum / float64(len(samples))

	var sqSum float64
	for _, s := range samples {
		d := s - mean
		sqSum += d * d
	}
	stdDev := 0.0
	if len(samples) > 1 {
		stdDev = math.Sqrt(sqSum / float64(len(samples)-1))
	}

	median := percentile(sorted, 50)

	deviations := make([]float64, len(samples))
	for i, s := range samples {
		d := s - median
		if d < 0 {
			d = -d
		}
		deviations[i] = d
	}
	sort.Float64s(deviations)
	medianAbsDev := percentile(deviations, 50) * 1.4826 // normal-consistent scale factor

	medianAbsDevPct := 0.0
	if median != 0 {
		medianAbsDevPct = medianAbsDev / median * 100.0
	}

	return Summary{
		Mean:            mean,
		Median:          median,
		MedianAbsDev:    medianAbsDev,
		MedianAbsDevPct: medianAbsDevPct,
		StdDev:          stdDev,
		Min:             min,
		Max:             max,
	}
}

// Winsorize clips samples below the pct-th percentile or above the
// (100-pct)-th percentile (both linearly interpolated by percentile) to those
// percentile values, in place, mirroring the upstream bench.rs `winsorize` call
// made before each Summary computation to blunt outliers from GC pauses or
// scheduler preemption.
func Winsorize(samples []float64, pct float64) {
	if len(samples) == 0 {
		return
	}
	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)

	lo := percentile(sorted, pct)
	hi := percentile(sorted, 100-pct)

	for i, s := range samples {
		switch {
		case s < lo:
			samples[i] = lo
		case s > hi:
			samples[i] = hi
		}
	}
}

// MBPerSec computes throughput in megabytes per second given a byte count
// and a per-iteration duration in nanoseconds.
func MBPerSec(bytes uint64, nsPerIter float64) float64 {
	if nsPerIter <= 0 {
		return 0
	}
	secondsPerIter := nsPerIter / 1e9
	bytesPerSec := float64(bytes) / secondsPerIter
	return bytesPerSec / (1024 * 1024)
}

// percentile assumes data is already sorted ascending.
func percentile(sortedData []float64, pct float64) float64 {
	n := len(sortedData)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sortedData[0]
	}
	rank := pct / 100 * float64(n-1)
	lo := int(rank)
	hi := lo + 1
	if hi >= n {
		return sortedData[n-1]
	}
	frac := rank - float64(lo)
	return sortedData[lo] + (sortedData[hi]-sortedData[lo])*frac
}
