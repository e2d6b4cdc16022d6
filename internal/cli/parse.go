package cli

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"

	"github.com/rileyhilliard/rstat/internal/errors"
	"github.com/rileyhilliard/rstat/internal/monitor"
	"github.com/spf13/cobra"
)


var parseEcho bool

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse captured probe output from stdin",
	Long: `Read raw probe output, one line per sample, and print each parsed sample
as a JSON object per line. Lines that aren't samples are skipped.

Handy for debugging a host whose numbers look wrong:

  ssh -t web "$(rstat script)" | head -3 | rstat parse

With --json, the whole input is reported in a single envelope.

Examples:
  rstat parse < capture.txt
  rstat parse --echo < capture.txt`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return parseCommand(cmd.InOrStdin(), cmd.OutOrStdout(), parseEcho)
	},
}

func init() {
	parseCmd.Flags().BoolVar(&parseEcho, "echo", false, "include the raw line with each sample")
	rootCmd.AddCommand(parseCmd)
}

// parsedLine is one sample found in the input.
type parsedLine struct {
	Line   int            `json:"line"`
	Raw    string         `json:"raw,omitempty"`
	Sample monitor.Sample `json:"sample"`
}

// parseSummary is the --json form of parse.
type parseSummary struct {
	Samples []parsedLine `json:"samples"`
	Skipped int          `json:"skipped"`
}

func parseCommand(in io.Reader, out io.Writer, echo bool) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), monitor.MaxLineSize)

	summary := parseSummary{Samples: []parsedLine{}}
	enc := json.NewEncoder(out)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := strings.TrimRight(scanner.Text(), "\r")
		sample, ok := monitor.ParseLine(raw)
		if !ok {
			summary.Skipped++
			log.Debug("line %d is not a sample: %q", lineNo, raw)
			continue
		}

		pl := parsedLine{Line: lineNo, Sample: sample}
		if echo {
			pl.Raw = raw
		}
		if machineMode {
			summary.Samples = append(summary.Samples, pl)
			continue
		}
		if err := enc.Encode(pl); err != nil {
			return errors.WrapWithCode(err, errors.ErrExec, "Couldn't write output", "")
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.WrapWithCode(err, errors.ErrExec,
			"Couldn't read input",
			"Lines longer than 1MB aren't supported")
	}

	if machineMode {
		return WriteJSONSuccess(out, summary)
	}
	return nil
}
