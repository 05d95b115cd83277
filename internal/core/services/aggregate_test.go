package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentile(t *testing.T) {
	_, ok := percentile(nil, 50)
	assert.False(t, ok)

	got, _ := percentile([]float64{7}, 95)
	assert.Equal(t, 7.0, got)

	got, _ = percentile([]float64{4, 1, 3, 2}, 50)
	assert.Equal(t, 2.0, got)

	got, _ = percentile([]float64{4, 1, 3, 2}, 0)
	assert.Equal(t, 1.0, got)

	got, _ = percentile([]float64{4, 1, 3, 2}, 100)
	assert.Equal(t, 4.0, got)
}

func TestRoundHalfUp(t *testing.T) {
	assert.Equal(t, 3, roundHalfUp(2.5))
	assert.Equal(t, 2, roundHalfUp(2.49))
	assert.Equal(t, -2, roundHalfUp(-2.5))
	assert.Equal(t, 0, roundHalfUp(0))
}
