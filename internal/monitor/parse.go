package monitor

import (
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"
)

// fieldCount is the number of fields in a complete probe line.
const fieldCount = 5

// MaxLineSize caps a single probe line. Process lists are the long part.
const MaxLineSize = 1 << 20

// numericPrefix matches the leading number of a field such as "3.5%" or "42".
var numericPrefix = regexp.MustCompile(`^[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?`)

// ParseLine parses one line of probe output.
//
// It returns false when the line has no field separator at all: shell
// prompts, pty noise and partial lines land here and are not errors.
// Anything past that degrades per field: unparseable numbers become NaN and
// a missing process block becomes an empty list.
func ParseLine(line string) (Sample, bool) {
	line = strings.TrimRight(line, "\r\n")

	// The last field absorbs any further separators, so a command line
	// containing " == " stays inside the process block.
	fields := strings.SplitN(line, FieldSeparator, fieldCount)
	if len(fields) < 2 {
		return Sample{}, false
	}

	field := func(i int) string {
		if i < len(fields) {
			return fields[i]
		}
		return ""
	}

	return Sample{
		Uptime:    strings.TrimSpace(field(0)),
		CPU:       ParsePercent(field(1)),
		Mem:       ParsePercent(field(2)),
		Disk:      ParsePercent(field(3)),
		Processes: ParseProcesses(field(4)),
	}, true
}

// ParsePercent extracts the leading number of s, ignoring any suffix such
// as "%". It returns NaN when s doesn't start with a number.
func ParsePercent(s string) float64 {
	m := numericPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// ParseProcesses parses the RecordSeparator-delimited process block.
//
// The probe sorts ascending by CPU and keeps the tail, so the rows are
// reversed here to put the heaviest process first. Blank rows are dropped.
// The result is never nil.
func ParseProcesses(block string) []ProcessEntry {
	records := strings.Split(block, RecordSeparator)
	entries := make([]ProcessEntry, 0, len(records))

	for _, rec := range records {
		rec = strings.TrimSpace(rec)
		if rec == "" {
			continue
		}
		entries = append(entries, parseProcess(rec))
	}

	slices.Reverse(entries)
	return entries
}

// parseProcess splits "cpu mem start command..." keeping the command's
// inner spacing intact.
func parseProcess(rec string) ProcessEntry {
	head, rest := cutFields(rec, 3)
	for len(head) < 3 {
		head = append(head, "")
	}
	return ProcessEntry{
		CPU:     head[0],
		Mem:     head[1],
		Start:   head[2],
		Command: rest,
	}
}

// cutFields returns up to n leading whitespace-separated tokens of s and
// the trimmed remainder.
func cutFields(s string, n int) ([]string, string) {
	tokens := make([]string, 0, n)
	rest := strings.TrimLeftFunc(s, unicode.IsSpace)

	for len(tokens) < n && rest != "" {
		end := strings.IndexFunc(rest, unicode.IsSpace)
		if end < 0 {
			tokens = append(tokens, rest)
			rest = ""
			break
		}
		tokens = append(tokens, rest[:end])
		rest = strings.TrimLeftFunc(rest[end:], unicode.IsSpace)
	}

	return tokens, strings.TrimSpace(rest)
}

// FormatProcesses encodes entries in the order given, the way the remote
// probe prints them. ParseProcesses(FormatProcesses(x)) is x reversed.
func FormatProcesses(entries []ProcessEntry) string {
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(strings.TrimSpace(strings.Join([]string{e.CPU, e.Mem, e.Start, e.Command}, " ")))
		b.WriteString(RecordSeparator)
	}
	return b.String()
}

// FormatLine encodes s as a probe line. Processes are written in reverse so
// that ParseLine(FormatLine(s)) returns them in the same order as s.
func FormatLine(s Sample) string {
	procs := slices.Clone(s.Processes)
	slices.Reverse(procs)

	return strings.Join([]string{
		s.Uptime,
		formatNumber(s.CPU) + "%",
		formatNumber(s.Mem),
		formatNumber(s.Disk) + "%",
		FormatProcesses(procs),
	}, FieldSeparator)
}

func formatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
