package ui

import (
	"math"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestRenderSparkline(t *testing.T) {
	nan := math.NaN()

	tests := []struct {
		name  string
		data  []float64
		width int
		want  string
	}{
		{"empty", nil, 10, ""},
		{"zero width", []float64{1, 2}, 0, ""},
		{"percent scale", []float64{0, 50, 100}, 10, "▁▄█"},
		{"flat percent", []float64{0, 0, 0}, 10, "▁▁▁"},
		{"truncates to newest", []float64{100, 0, 0}, 2, "▁▁"},
		{"nan gaps", []float64{0, nan, 100}, 10, "▁ █"},
		{"all nan", []float64{nan, nan}, 10, "  "},
		{"non-percent scales to range", []float64{200, 300}, 10, "▁█"},
		{"non-percent flat", []float64{500, 500}, 10, "▄▄"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RenderSparkline(tt.data, tt.width))
		})
	}
}

func TestRenderSparkline_Width(t *testing.T) {
	data := make([]float64, 100)
	for i := range data {
		data[i] = float64(i)
	}
	assert.Equal(t, 20, utf8.RuneCountInString(RenderSparkline(data, 20)))
}
