// Package dashboard is the Bubble Tea model behind 'rstat top'.
//
// The model owns no connections. The caller runs one remote.Remote per host
// and forwards its callbacks into the program as SampleMsg, StateMsg and
// ErrorMsg values via tea.Program.Send; the model keeps the latest sample
// and a short history per host and renders them as a card grid, or as a
// detail view with a process table for the selected host.
package dashboard
