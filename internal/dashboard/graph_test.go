package dashboard

import (
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderGraph_Shape(t *testing.T) {
	out := RenderGraph([]float64{10, 20, 30}, 5, 2)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	for _, l := range lines {
		assert.Equal(t, 5, utf8.RuneCountInString(l))
	}
}

func TestRenderGraph_Empty(t *testing.T) {
	assert.Empty(t, RenderGraph([]float64{1}, 0, 2))
	assert.Empty(t, RenderGraph([]float64{1}, 2, 0))
	assert.Equal(t, "⠀⠀", RenderGraph(nil, 2, 1))
}

func TestRenderGraph_FullAndEmpty(t *testing.T) {
	// One cell, one row: left column full, right column empty.
	assert.Equal(t, "⡇", RenderGraph([]float64{100, 0}, 1, 1))
	// Both columns full.
	assert.Equal(t, "⣿", RenderGraph([]float64{100, 100}, 1, 1))
}

func TestRenderGraph_RightAligned(t *testing.T) {
	// A single sample lands in the right half of the last cell.
	out := RenderGraph([]float64{100}, 2, 1)
	assert.Equal(t, "⠀⢸", out)
}

func TestRenderGraph_SmallValuesVisible(t *testing.T) {
	out := RenderGraph([]float64{1, 1}, 1, 1)
	assert.Equal(t, "⣀", out)
}

func TestRenderGraph_SkipsNaN(t *testing.T) {
	out := RenderGraph([]float64{math.NaN(), 100}, 1, 1)
	assert.Equal(t, "⢸", out)
}

func TestRenderGraph_KeepsNewest(t *testing.T) {
	out := RenderGraph([]float64{100, 100, 0, 0}, 1, 1)
	assert.Equal(t, "⠀", out)
}
