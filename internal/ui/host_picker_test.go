package ui

import (
	"bytes"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/rstat/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostItem(t *testing.T) {
	item := hostItem{host: HostInfo{Name: "web", Target: "deploy@web:22", Source: "config"}}
	assert.Equal(t, "web", item.Title())
	assert.Equal(t, "deploy@web:22 | config", item.Description())
	assert.Equal(t, "web deploy@web:22", item.FilterValue())

	bare := hostItem{host: HostInfo{Name: "lab", Target: "root@lab:22"}}
	assert.Equal(t, "root@lab:22", bare.Description())
}

func TestHostPickerModel_Select(t *testing.T) {
	m := NewHostPickerModel([]HostInfo{{Name: "a", Target: "a"}, {Name: "b", Target: "b"}})
	assert.Nil(t, m.Selected())

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	next, cmd := next.(HostPickerModel).Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	picked := next.(HostPickerModel).Selected()
	require.NotNil(t, picked)
	assert.Equal(t, "b", picked.Name)
	assert.Empty(t, next.View())
}

func TestHostPickerModel_Cancel(t *testing.T) {
	m := NewHostPickerModel([]HostInfo{{Name: "a"}, {Name: "b"}})
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Nil(t, next.(HostPickerModel).Selected())
}

func TestPickHostWithIO(t *testing.T) {
	_, err := PickHostWithIO(nil, &bytes.Buffer{}, &bytes.Buffer{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))

	h, err := PickHostWithIO([]HostInfo{{Name: "only"}}, &bytes.Buffer{}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "only", h.Name)
}

func TestRenderHeader(t *testing.T) {
	out := RenderHeader("v1.2.3", "remote host monitor")
	assert.Contains(t, out, "rstat v1.2.3\n")
	assert.Contains(t, out, "remote host monitor\n")

	assert.NotContains(t, RenderHeader("dev", ""), "\n\n")
}
