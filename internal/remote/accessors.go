package remote

import "github.com/rileyhilliard/rstat/internal/monitor"

// The accessors below report ok=false unless the Remote is connected and a
// sample has arrived on the current connection. They never block on I/O.

// Uptime returns the remote uptime text from the latest sample.
func (r *Remote) Uptime() (string, bool) {
	s, ok := r.latest()
	return s.Uptime, ok
}

// CPU returns the latest CPU percentage. It may be NaN if the probe's
// output couldn't be parsed.
func (r *Remote) CPU() (float64, bool) {
	s, ok := r.latest()
	return s.CPU, ok
}

// Mem returns the latest memory percentage.
func (r *Remote) Mem() (float64, bool) {
	s, ok := r.latest()
	return s.Mem, ok
}

// Disk returns the latest root filesystem usage percentage.
func (r *Remote) Disk() (float64, bool) {
	s, ok := r.latest()
	return s.Disk, ok
}

// Processes returns a copy of the latest process list, heaviest first.
func (r *Remote) Processes() ([]monitor.ProcessEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.available() {
		return nil, false
	}
	out := make([]monitor.ProcessEntry, len(r.sample.Processes))
	copy(out, r.sample.Processes)
	return out, true
}

// Sample returns a copy of the latest sample.
func (r *Remote) Sample() (monitor.Sample, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.available() {
		return monitor.Sample{}, false
	}
	return r.sample.Clone(), true
}

// State returns the current lifecycle state.
func (r *Remote) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// SessionID identifies the current or most recent connection. It changes
// on every Connect.
func (r *Remote) SessionID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session
}

// Transitions returns the recent state history, oldest first.
func (r *Remote) Transitions() []StateTransition {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]StateTransition, len(r.transitions))
	copy(out, r.transitions)
	return out
}

// OnUpdate registers h for every parsed sample. Handlers run in
// registration order on the reader goroutine and may call Stop.
func (r *Remote) OnUpdate(h UpdateHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updateHandlers = append(r.updateHandlers, h)
}

// OnStateChange registers h for every state transition. Handlers run in
// registration order outside the lock and may call Stop, including from
// the connecting transition.
func (r *Remote) OnStateChange(h StateHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stateHandlers = append(r.stateHandlers, h)
}

func (r *Remote) latest() (monitor.Sample, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.available() {
		return monitor.Sample{}, false
	}
	return r.sample, true
}

// available must be called with r.mu held.
func (r *Remote) available() bool {
	return r.state == StateConnected && r.hasSample
}
