package monitor

import (
	"encoding/json"
	"math"
)

// Sample is one parsed record from the remote probe.
// Numeric fields are NaN when the remote value couldn't be parsed.
type Sample struct {
	Uptime    string
	CPU       float64
	Mem       float64
	Disk      float64
	Processes []ProcessEntry
}

// ProcessEntry is one row of the remote process list.
// Values are kept as reported by ps; the probe pre-formats them.
type ProcessEntry struct {
	CPU     string `json:"cpu"`
	Mem     string `json:"mem"`
	Start   string `json:"start"`
	Command string `json:"process"`
}

// EmptySample returns a Sample with every numeric field unset.
func EmptySample() Sample {
	return Sample{
		CPU:       math.NaN(),
		Mem:       math.NaN(),
		Disk:      math.NaN(),
		Processes: []ProcessEntry{},
	}
}

// Clone returns a copy of s that shares no memory with it.
func (s Sample) Clone() Sample {
	out := s
	if s.Processes != nil {
		out.Processes = make([]ProcessEntry, len(s.Processes))
		copy(out.Processes, s.Processes)
	}
	return out
}

type sampleJSON struct {
	Uptime    string         `json:"uptime"`
	CPU       *float64       `json:"cpu"`
	Mem       *float64       `json:"mem"`
	Disk      *float64       `json:"disk"`
	Processes []ProcessEntry `json:"processes"`
}

// MarshalJSON encodes NaN fields as null, which encoding/json can't do on its own.
func (s Sample) MarshalJSON() ([]byte, error) {
	procs := s.Processes
	if procs == nil {
		procs = []ProcessEntry{}
	}
	return json.Marshal(sampleJSON{
		Uptime:    s.Uptime,
		CPU:       finite(s.CPU),
		Mem:       finite(s.Mem),
		Disk:      finite(s.Disk),
		Processes: procs,
	})
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
