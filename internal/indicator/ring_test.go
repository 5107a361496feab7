package indicator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRing_OverwritesOldest(t *testing.T) {
	t.Parallel()

	r := NewRing(3)
	for _, v := range []float64{1, 2, 3} {
		_, evicted := r.Push(v)
		assert.False(t, evicted)
	}
	require.True(t, r.Full())

	old, evicted := r.Push(4)
	assert.True(t, evicted)
	assert.Equal(t, 1.0, old)
	assert.Equal(t, []float64{2, 3, 4}, r.Values())
	assert.Equal(t, 4.0, r.Last(1))
	assert.Equal(t, 3.0, r.Last(2))
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, 3, r.Cap())
}

func TestRing_Reset(t *testing.T) {
	t.Parallel()

	r := NewRing(2)
	r.Push(1)
	r.Push(2)
	r.Reset()
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.Values())
	assert.Panics(t, func() { r.At(0) })
}
