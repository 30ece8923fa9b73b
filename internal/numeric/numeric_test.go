package numeric

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercent(t *testing.T) {
	tests := []struct {
		part, whole int
		places      int32
		want        float64
	}{
		{1, 3, 2, 33.33},
		{2, 3, 2, 66.67},
		{1, 8, 2, 12.5},
		{1, 8, 1, 12.5},
		{1, 200, 1, 0.5},
		{5, 0, 2, 0},
		{0, 10, 2, 0},
		{-3, 20, 1, -15},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Percent(tt.part, tt.whole, tt.places), "%d/%d", tt.part, tt.whole)
	}
}

func TestRound(t *testing.T) {
	assert.Equal(t, 2.68, Round(2.675, 2))
	assert.Equal(t, 0.3, Round(0.1+0.2, 1))
	assert.Equal(t, -1.3, Round(-1.25, 1))
}

func TestRatio(t *testing.T) {
	assert.Equal(t, 0.25, Ratio(1, 4))
	assert.Equal(t, 0.0, Ratio(1, 0))
}

func TestPortion(t *testing.T) {
	assert.Equal(t, 7, Portion(10, 0.7))
	assert.Equal(t, 2, Portion(3, 0.7))
	assert.Equal(t, 0, Portion(1, 0.15))
	assert.Equal(t, 15, Portion(100, 0.15))
	assert.Equal(t, 0, Portion(0, 0.8))
}

func TestScale(t *testing.T) {
	assert.Equal(t, 21, Scale(30, 0.7))
	assert.Equal(t, 8, Scale(12.5, 0.7))
	assert.Equal(t, 0, Scale(0, 0.7))
}
