package bench

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBencherConverges(t *testing.T) {
	var b Bencher
	calls := 0
	b.Iter(func() {
		calls++
	})

	summ := b.Summary()
	require.NotNil(t, summ)
	assert.Greater(t, calls, 0)
	assert.GreaterOrEqual(t, summ.Median, 0.0)
}

func TestBencherMBPerSecZeroWithoutBytes(t *testing.T) {
	var b Bencher
	b.Iter(func() {})
	assert.Equal(t, 0.0, b.MBPerSec())
}

func TestBencherMBPerSecWithBytes(t *testing.T) {
	var b Bencher
	b.Bytes = 1024
	b.Iter(func() {})
	assert.GreaterOrEqual(t, b.MBPerSec(), 0.0)
}
