// Package ui holds the terminal presentation pieces shared by rstat's
// commands: colors, sample formatting, sparklines, tables, spinners and the
// interactive host picker.
//
// # Color Scheme
//
// Status colors are plain ANSI codes so they degrade well:
//
//	ColorSuccess   (green)  - healthy values, connected hosts
//	ColorWarning   (yellow) - values above the warning threshold
//	ColorError     (red)    - values above the critical threshold, failures
//	ColorMuted     (gray)   - timestamps, secondary text
//
// ConfigureOutput picks the lipgloss color profile for a file: Ascii when it
// isn't a terminal or --no-color was given, the environment's profile
// otherwise.
//
// # Samples
//
// FormatSampleLine renders one probe sample as a single line for
// 'rstat watch':
//
//	12:04:11 web  up 3 days, 2:01  cpu 12.5%  mem 43.0%  disk 71.0%  nginx 3.2%
//
// Missing values (NaN) render as "--".
//
// # Bubble Tea Components
//
// HostSpinner wraps the bubbles spinner for the dashboard's connecting
// state. PickHost runs a bubbles list for choosing a host when none was
// named on the command line.
package ui
