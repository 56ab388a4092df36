package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/whispersrt/bootstrap"
	"github.com/kbukum/whispersrt/conversion"
)

type convertFlags struct {
	apiKey      string
	granularity string
	language    string
	prompt      string
	model       string
	provider    string
	out         string
	debug       bool
}

func newConvertCommand(opts *loadOptions) *cobra.Command {
	var flags convertFlags

	cmd := &cobra.Command{
		Use:   "convert <audio-file>",
		Short: "Transcribe an audio file and write SRT",
		Long: "Transcribe an audio file and write the SubRip document to --out or stdout.\n" +
			"Logs and the --debug table go to stderr.",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("provide the path to an audio file. Example: whispersrt convert talk.mp3 --out talk.srt")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*opts)
			if err != nil {
				return err
			}
			return runConvert(cmd.Context(), cfg, args[0], flags, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.apiKey, "api-key", "", "OpenAI API key (defaults to transcription.openai.api_key or OPENAI_API_KEY)")
	f.StringVarP(&flags.granularity, "granularity", "g", "", "Timestamp granularity: segment or word")
	f.StringVarP(&flags.language, "language", "l", "", "ISO-639-1 language hint")
	f.StringVar(&flags.prompt, "prompt", "", "Prompt passed to the model")
	f.StringVar(&flags.model, "model", "", "Model name override")
	f.StringVar(&flags.provider, "provider", "", "Provider: openai or whisper")
	f.StringVarP(&flags.out, "out", "o", "", "Output file (default stdout)")
	f.BoolVar(&flags.debug, "debug", false, "Print per-unit timing statistics to stderr")
	return cmd
}

func runConvert(ctx context.Context, cfg *AppConfig, path string, flags convertFlags, stdout, stderr io.Writer) error {
	// stdout carries the document.
	cfg.Logging.Output = "stderr"

	app, err := bootstrap.NewApp(cfg, bootstrap.WithSummaryOutput(io.Discard))
	if err != nil {
		return err
	}
	providers := conversion.NewProviders(cfg.Transcription, app.Logger)
	if err := app.RegisterComponent(providers); err != nil {
		return err
	}
	svc, err := newConversionService(cfg, providers, app.Logger, nil)
	if err != nil {
		return err
	}

	return app.RunTask(ctx, func(ctx context.Context) error {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open audio: %w", err)
		}
		defer func() { _ = f.Close() }()

		info, err := f.Stat()
		if err != nil {
			return fmt.Errorf("stat audio: %w", err)
		}
		if info.IsDir() {
			return fmt.Errorf("%q is a directory", path)
		}

		res, err := svc.Convert(ctx, conversion.Upload{FileName: filepath.Base(path), Size: info.Size(), Body: f}, conversion.Options{
			APIKey:      flags.apiKey,
			Granularity: flags.granularity,
			Language:    flags.language,
			Prompt:      flags.prompt,
			Model:       flags.model,
			Provider:    flags.provider,
		})
		if err != nil {
			return err
		}

		if err := writeOutput(flags.out, stdout, res.SRT); err != nil {
			return err
		}
		if flags.debug {
			fmt.Fprintf(stderr, "provider=%s granularity=%s language=%s elapsed=%s\n",
				res.Provider, res.Granularity, res.Language, res.Elapsed.Round(time.Millisecond))
			printStats(stderr, res.Stats)
		}
		return nil
	})
}

// writeOutput writes srt to path, or to stdout when path is empty or "-".
func writeOutput(path string, stdout io.Writer, srt string) error {
	if path == "" || path == "-" {
		_, err := io.WriteString(stdout, srt)
		return err
	}
	if err := os.WriteFile(path, []byte(srt), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func printStats(w io.Writer, stats conversion.Stats) {
	rows := make([][]string, 0, len(stats.Units))
	for _, u := range stats.Units {
		gap := "-"
		if u.GapToNext != nil {
			gap = fmt.Sprintf("%.2f", *u.GapToNext)
		}
		rows = append(rows, []string{
			fmt.Sprint(u.Index),
			fmt.Sprintf("%.2f", u.Start),
			fmt.Sprintf("%.2f", u.End),
			fmt.Sprintf("%.2f", u.Duration),
			gap,
			truncate(strings.TrimSpace(u.Text), 48),
		})
	}
	fmt.Fprintln(w, renderTable(w,
		[]string{"#", "Start", "End", "Duration", "Gap", "Text"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft},
	))
	fmt.Fprintf(w, "units=%d speech=%.2fs span=%.2fs gaps=%.2fs max_gap=%.2fs overlaps=%d\n",
		stats.Count, stats.Speech, stats.Span, stats.TotalGap, stats.MaxGap, stats.Overlaps)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
