package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuantile(t *testing.T) {
	values := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0}

	tests := []struct {
		name string
		q    float64
		want float64
	}{
		{name: "minimum", q: 0, want: 0.1},
		{name: "maximum", q: 1, want: 1.0},
		{name: "median", q: 0.5, want: 0.55},
		{name: "top decile cutoff", q: 0.9, want: 0.91},
		{name: "interpolates between ranks", q: 0.25, want: 0.325},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Quantile(values, tt.q), 1e-9)
		})
	}

	t.Run("unsorted input", func(t *testing.T) {
		shuffled := []float64{0.9, 0.1, 0.5, 0.3, 0.7}
		assert.InDelta(t, 0.9, Quantile(shuffled, 1), 1e-9)
		assert.InDelta(t, 0.1, Quantile(shuffled, 0), 1e-9)
		assert.InDelta(t, 0.5, Quantile(shuffled, 0.5), 1e-9)
	})

	t.Run("single value", func(t *testing.T) {
		assert.Equal(t, 0.42, Quantile([]float64{0.42}, 0.9))
	})
}
