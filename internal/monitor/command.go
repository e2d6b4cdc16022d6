package monitor

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Wire format of the probe output.
const (
	// FieldSeparator joins the metric values on one output line.
	FieldSeparator = " == "
	// RecordSeparator joins process rows inside the processes field.
	RecordSeparator = "@"
)

const (
	// DefaultInterval is how often the remote loop emits a line.
	DefaultInterval = 2500 * time.Millisecond
	// DefaultTopN is how many processes the probe keeps.
	DefaultTopN = 15

	varPrefix = "host_"
)

// FailurePolicy decides what the remote loop does when a probe fails.
type FailurePolicy string

const (
	// PolicyPartial prints a line every interval; failed probes leave empty fields.
	PolicyPartial FailurePolicy = "partial"
	// PolicySkip prints nothing for an interval in which any probe failed.
	PolicySkip FailurePolicy = "skip"
)

// ParseFailurePolicy converts a config value to a FailurePolicy.
// An empty string selects PolicyPartial.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch FailurePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyPartial:
		return PolicyPartial, nil
	case PolicySkip:
		return PolicySkip, nil
	default:
		return "", fmt.Errorf("unknown probe failure policy %q (want %q or %q)", s, PolicyPartial, PolicySkip)
	}
}

// Probe is a named shell expression whose output becomes one field.
type Probe struct {
	Name    string
	Command string
}

// ScriptOptions tunes the generated polling command.
type ScriptOptions struct {
	TopN   int
	Policy FailurePolicy
}

// Probes returns the probe registry in wire order:
// uptime, cpu, ram, disk, processes.
func Probes(topN int) []Probe {
	if topN <= 0 {
		topN = DefaultTopN
	}
	return []Probe{
		{Name: "uptime", Command: `uptime`},
		{Name: "cpu", Command: `top -bn 2 -d 0.3 | grep '^%\?Cpu.s.' | tail -1 | awk '{print $2+$4+$6 "%"}'`},
		{Name: "ram", Command: `cat /proc/meminfo | head | tr -d '\n' | awk '{print ($2-$4-$8-$10)*100/$2}'`},
		{Name: "disk", Command: `df -lh | grep '% /$' | awk '{print $5}'`},
		{Name: "processes", Command: `ps axw o %cpu,%mem,start_time,cmd | grep -Ev 'grep|%CPU' | sed -e 's/ *$//g' -e 's/ \([a-z\/\.-]*\/\)/ /g' | sort -n | tail -` +
			strconv.Itoa(topN) + ` | tr '\n' '@'`},
	}
}

// BuildCommand returns a shell loop that runs every probe once per interval
// and prints a single line of FieldSeparator-joined values.
//
// The loop never exits on its own; closing the channel ends it.
func BuildCommand(interval time.Duration, opts ScriptOptions) string {
	probes := Probes(opts.TopN)

	captures := make([]string, 0, len(probes))
	fields := make([]string, 0, len(probes))
	for _, p := range probes {
		name := varPrefix + p.Name
		captures = append(captures, name+"=$("+p.Command+")")
		fields = append(fields, "$"+name)
	}

	joiner := "; "
	if opts.Policy == PolicySkip {
		joiner = " && "
	}

	var b strings.Builder
	b.WriteString("while sleep ")
	b.WriteString(FormatInterval(interval))
	b.WriteString("; do ")
	b.WriteString(strings.Join(captures, joiner))
	b.WriteString(joiner)
	b.WriteString(`echo "`)
	b.WriteString(strings.Join(fields, FieldSeparator))
	b.WriteString(`"; done`)
	return b.String()
}

// FormatInterval renders d as seconds for sleep(1), without trailing zeros.
// Non-positive durations use DefaultInterval.
func FormatInterval(d time.Duration) string {
	if d <= 0 {
		d = DefaultInterval
	}
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}
