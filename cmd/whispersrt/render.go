package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kbukum/whispersrt/conversion"
	"github.com/kbukum/whispersrt/subtitle"
)

func newRenderCommand(opts *loadOptions) *cobra.Command {
	var (
		policyFlag string
		out        string
		debug      bool
	)

	cmd := &cobra.Command{
		Use:   "render <units.json|->",
		Short: "Render a JSON array of timed units as SRT",
		Long: "Render a JSON array of {\"start\", \"end\", \"text\"} objects as a SubRip document.\n" +
			"Pass - to read from stdin. No transcription provider is called.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if policyFlag == "" {
				cfg, err := loadConfig(*opts)
				if err != nil {
					return err
				}
				cfg.Conversion.ApplyDefaults()
				policyFlag = cfg.Conversion.Policy
			}
			policy, err := subtitle.ParsePolicy(policyFlag)
			if err != nil {
				return err
			}

			data, err := readInput(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}

			srt, units, report, err := subtitle.Assembler{Policy: policy}.AssembleJSON(data)
			if err != nil {
				return err
			}
			if err := writeOutput(out, cmd.OutOrStdout(), srt); err != nil {
				return err
			}

			stderr := cmd.ErrOrStderr()
			for _, issue := range report.Issues {
				fmt.Fprintf(stderr, "skipped %s\n", issue)
			}
			if debug {
				printStats(stderr, conversion.Analyze(units))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&policyFlag, "policy", "p", "", "Malformed unit policy: reject or skip (default conversion.policy)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	cmd.Flags().BoolVar(&debug, "debug", false, "Print per-unit timing statistics to stderr")
	return cmd
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read units: %w", err)
	}
	return data, nil
}
