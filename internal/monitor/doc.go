// Package monitor defines the remote metrics probe and its wire format.
//
// # Probe
//
// BuildCommand produces a single shell loop that runs on the remote host:
//
//	while sleep 2.5; do host_uptime=$(uptime); host_cpu=$(...); ...; echo "$host_uptime == $host_cpu == ..."; done
//
// Each iteration prints one line. Fields appear in a fixed order (uptime,
// cpu, ram, disk, processes) separated by " == ". The processes field is
// itself a list of rows joined by "@", each row being
// "<cpu> <mem> <start> <command...>".
//
// # Parsing
//
// ParseLine turns one such line into a Sample. It is deliberately lenient:
// a line without any separator is "not a sample" rather than an error, and
// malformed numbers become NaN instead of failing the whole line. Process
// rows arrive sorted ascending by CPU and are reversed so the heaviest
// process is first.
//
// # History
//
// History keeps a short in-memory ring of recent percentages for sparkline
// rendering. Nothing is persisted.
package monitor
