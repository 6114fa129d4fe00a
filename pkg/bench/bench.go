package bench

import (
	"math"
	"time"

	"github.com/giantswarm/gotestr/pkg/stats"
)

const (
	sampleCount        = 50
	initialTargetNanos = 1_000_000 // 1ms
	convergenceWindow  = 100 * time.Millisecond
	maxTotalRun        = 3 * time.Second
)

// Bencher is the callback handed to a benchmark test function. Go has no
// separate sync/async Bencher types the way the upstream crate does (its
// AsyncBencher exists only because Rust futures need a distinct await-based
// iter loop); a goroutine-driven benchmark body closes over whatever
// channels or contexts it needs and still calls the same Iter.
type Bencher struct {
	// Bytes is set by the benchmark body before calling Iter to report a
	// throughput figure alongside the timing summary.
	Bytes uint64

	summary *stats.Summary
}

// Iter runs fn repeatedly, adaptively growing the iteration count per
// sample until the result converges or a 3-second ceiling is reached,
// mirroring bench.rs's `iter`.
func (b *Bencher) Iter(fn func()) {
	summ := iterate(fn)
	b.summary = &summ
}

// Summary returns the statistics gathered by the most recent Iter call, or
// nil if Iter was never called.
func (b *Bencher) Summary() *stats.Summary {
	return b.summary
}

// MBPerSec reports throughput using the byte count set on Bytes, or zero if
// either Bytes or the summary is unset.
func (b *Bencher) MBPerSec() float64 {
	if b.summary == nil || b.Bytes == 0 {
		return 0
	}
	return stats.MBPerSec(b.Bytes, b.summary.Median)
}

func iterate(fn func()) stats.Summary {
	nsSingle := nsIter(fn, 1)

	n := uint64(initialTargetNanos) / maxU64(1, nsSingle)
	if n < 1 {
		n = 1
	}

	var totalRun time.Duration
	samples := make([]float64, sampleCount)

	for {
		loopStart := time.Now()

		for i := range samples {
			samples[i] = float64(nsIter(fn, n)) / float64(n)
		}
		stats.Winsorize(samples, 5.0)
		summ := stats.Summarize(samples)

		for i := range samples {
			ns := nsIter(fn, 5*n)
			samples[i] = float64(ns) / float64(5*n)
		}
		stats.Winsorize(samples, 5.0)
		summ5 := stats.Summarize(samples)

		loopRun := time.Since(loopStart)

		if loopRun > convergenceWindow && summ.MedianAbsDevPct < 1.0 && summ.Median-summ5.Median < summ5.MedianAbsDev {
			return summ5
		}

		totalRun += loopRun
		if totalRun > maxTotalRun {
			return summ5
		}

		// Mirrors the upstream checked_mul(10) guard with an n*2 step: the
		// overflow check is against a 10x growth even though the applied
		// step is 2x, so the next loop's 5x sampling pass still has
		// headroom before overflowing.
		if n > math.MaxUint64/10 {
			return summ5
		}
		n *= 2
	}
}

func nsIter(fn func(), k uint64) uint64 {
	start := time.Now()
	for i := uint64(0); i < k; i++ {
		fn()
	}
	return uint64(time.Since(start).Nanoseconds())
}

func maxU64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}
