package monitor

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptySample(t *testing.T) {
	s := EmptySample()
	assert.Empty(t, s.Uptime)
	assert.True(t, math.IsNaN(s.CPU))
	assert.True(t, math.IsNaN(s.Mem))
	assert.True(t, math.IsNaN(s.Disk))
	assert.NotNil(t, s.Processes)
}

func TestSample_Clone(t *testing.T) {
	s := Sample{Processes: []ProcessEntry{{Command: "a"}}}
	c := s.Clone()
	c.Processes[0].Command = "b"
	assert.Equal(t, "a", s.Processes[0].Command)
}

func TestSample_MarshalJSON(t *testing.T) {
	s := EmptySample()
	s.Uptime = "up"
	s.CPU = 12.5

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"uptime":"up","cpu":12.5,"mem":null,"disk":null,"processes":[]}`, string(data))

	data, err = json.Marshal(Sample{Processes: []ProcessEntry{{CPU: "1", Mem: "2", Start: "3", Command: "x"}}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"uptime":"","cpu":0,"mem":0,"disk":0,"processes":[{"cpu":"1","mem":"2","start":"3","process":"x"}]}`, string(data))
}
