package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nouscopy/nouscopy/internal/copygen"
	"github.com/nouscopy/nouscopy/internal/generate"
)

type generateFlags struct {
	briefPath  string
	variations int
	asJSON     bool
	duration   int
}

// newGenerateCommand writes a copy offline with the rule engine. The brief
// file is YAML or JSON with the brief's field names.
func newGenerateCommand() *cobra.Command {
	flags := &generateFlags{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a copy from a brief file with the rule engine",
		Example: `  nouscopy generate --brief brief.yaml
  nouscopy generate --brief brief.json --variations 3 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := readBrief(flags.briefPath)
			if err != nil {
				return err
			}
			// The command never calls an AI provider.
			b.UseAI = false

			svc := generate.NewService(nil, generate.Options{DefaultDuration: flags.duration})
			res, err := svc.GenerateBrief(cmd.Context(), "", b)
			if err != nil {
				return fmt.Errorf("generating copy: %w", err)
			}

			var variations []copygen.Variation
			if flags.variations > 0 {
				variations = svc.Variations(b, flags.variations)
			}
			return printResult(cmd.OutOrStdout(), res, variations, flags.asJSON)
		},
	}

	cmd.Flags().StringVarP(&flags.briefPath, "brief", "b", "", "path to a YAML or JSON brief")
	cmd.Flags().IntVar(&flags.variations, "variations", 0, "also print this many variations with other triggers")
	cmd.Flags().BoolVar(&flags.asJSON, "json", false, "print the full result as JSON")
	cmd.Flags().IntVar(&flags.duration, "duration", 30, "video length in seconds when the brief sets none")
	_ = cmd.MarkFlagRequired("brief")

	return cmd
}

func readBrief(path string) (copygen.Brief, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return copygen.Brief{}, fmt.Errorf("reading brief: %w", err)
	}
	// JSON is valid YAML, so one decoder reads both.
	var b copygen.Brief
	if err := yaml.Unmarshal(data, &b); err != nil {
		return copygen.Brief{}, fmt.Errorf("parsing brief %s: %w", path, err)
	}
	return b, nil
}

func printResult(w io.Writer, res *generate.Result, variations []copygen.Variation, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			*generate.Result
			Variations []copygen.Variation `json:"variations,omitempty"`
		}{res, variations})
	}

	fmt.Fprintln(w, res.Text)
	if res.Layout.Video != nil {
		fmt.Fprintf(w, "\n%s (%ds, %d palavras, ~%.0fs de fala)\n",
			res.Layout.Title, res.Layout.Video.DurationSeconds, res.Layout.Video.WordCount, res.Layout.Video.SpeechSeconds)
		for _, row := range res.Layout.Video.Rows {
			fmt.Fprintf(w, "  %02d-%02ds  %-6s  %s\n", row.Start, row.End, row.Section, row.Visual)
		}
	}
	for _, line := range res.Layout.Rationale {
		fmt.Fprintf(w, "- %s\n", line)
	}
	for _, v := range variations {
		fmt.Fprintf(w, "\n[%s]\n%s\n", v.Trigger, copygen.FormatText(v.Copy))
	}
	return nil
}
