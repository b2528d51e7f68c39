package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/coolbeans/slugline/pkg/analysis"
	"github.com/coolbeans/slugline/pkg/config"
	"github.com/coolbeans/slugline/pkg/extract"
	"github.com/coolbeans/slugline/pkg/ingest"
	"github.com/coolbeans/slugline/pkg/pipeline"
	"github.com/coolbeans/slugline/pkg/report"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "slugline",
		Short: "Screenplay text structuring pipeline",
		Long: `Slugline turns raw screenplay text — plain-text or PDF exports with
broken line wrapping, page numbers, and form feeds — into typed,
scene-indexed blocks ready for analysis.

It runs three stages over each document:
  - Normalize: strip extraction artifacts and rebuild the line structure
  - Parse: segment the clean text into ACTION and DIALOGUE blocks
  - Report: export blocks and per-scene/per-character metrics as CSV`,
		Version: version,
	}

	rootCmd.AddCommand(normalizeCmd())
	rootCmd.AddCommand(parseCmd())
	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func normalizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Normalize a raw script into canonical text",
		Long: `Normalize a raw script file: canonicalize line endings, remove page
numbers and form feeds, rebuild scene-heading lines, and unwrap
paragraphs broken by text extraction.

Example:
  slugline normalize --in whiplash_raw.txt --out whiplash_clean.txt --stats`,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, _ := cmd.Flags().GetString("in")
			out, _ := cmd.Flags().GetString("out")
			noReinject, _ := cmd.Flags().GetBool("no-reinject")
			splitRepair, _ := cmd.Flags().GetBool("split-repair")
			showStats, _ := cmd.Flags().GetBool("stats")

			if in == "" {
				return fmt.Errorf("--in flag is required")
			}

			raw, warnings, err := ingest.Load(in)
			if err != nil {
				return err
			}
			for _, w := range warnings {
				fmt.Fprintf(os.Stderr, "warning: %s\n", w)
			}

			opts := extract.DefaultOptions()
			opts.StructuralReinjection = !noReinject
			opts.SplitWordRepair = splitRepair

			cleaned, stats := extract.Normalize(raw, opts)

			if out == "" {
				fmt.Print(cleaned)
			} else if err := os.WriteFile(out, []byte(cleaned), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}

			if showStats {
				return printJSON(os.Stderr, stats)
			}
			return nil
		},
	}

	cmd.Flags().String("in", "", "Raw script file (.txt or .pdf)")
	cmd.Flags().String("out", "", "Output file (default: stdout)")
	cmd.Flags().Bool("no-reinject", false, "Disable structural break reinjection")
	cmd.Flags().Bool("split-repair", false, "Repair words split by extraction (e.g. \"sl ept\")")
	cmd.Flags().Bool("stats", false, "Print normalization stats as JSON to stderr")
	return cmd
}

func parseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse canonical text into typed blocks",
		Long: `Parse a normalized script into ACTION and DIALOGUE blocks grouped by
scene, and write them as CSV. Input that has not been normalized first
will still parse, but wrapped lines end up as separate blocks.

Example:
  slugline parse --in whiplash_clean.txt --out whiplash_blocks.csv --stats`,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, _ := cmd.Flags().GetString("in")
			out, _ := cmd.Flags().GetString("out")
			scriptID, _ := cmd.Flags().GetString("script-id")
			showStats, _ := cmd.Flags().GetBool("stats")

			if in == "" {
				return fmt.Errorf("--in flag is required")
			}
			if scriptID == "" {
				scriptID = ingest.ScriptID(in)
			}

			text, err := ingest.ReadText(in)
			if err != nil {
				return err
			}

			blocks, stats := extract.ParseScript(text, scriptID)

			if out == "" {
				if err := report.WriteBlocksCSV(os.Stdout, blocks); err != nil {
					return err
				}
			} else if err := report.WriteBlocksFile(out, blocks); err != nil {
				return err
			}

			if showStats {
				return printJSON(os.Stderr, stats)
			}
			return nil
		},
	}

	cmd.Flags().String("in", "", "Normalized script file")
	cmd.Flags().String("out", "", "Output CSV file (default: stdout)")
	cmd.Flags().String("script-id", "", "Script identifier (default: derived from file name)")
	cmd.Flags().Bool("stats", false, "Print parse stats as JSON to stderr")
	return cmd
}

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Compute dialogue metrics from parsed blocks",
		Long: `Compute per-scene dialogue density or per-character dialogue totals.
Reads either a block CSV produced by "slugline parse" (--blocks) or a
normalized script (--in), which is parsed on the fly.

Examples:
  slugline analyze --blocks whiplash_blocks.csv --report scenes
  slugline analyze --in whiplash_clean.txt --report characters --top-n 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			blocksPath, _ := cmd.Flags().GetString("blocks")
			in, _ := cmd.Flags().GetString("in")
			reportKind, _ := cmd.Flags().GetString("report")
			topN, _ := cmd.Flags().GetInt("top-n")
			out, _ := cmd.Flags().GetString("out")

			var blocks []extract.Block
			switch {
			case blocksPath != "":
				var err error
				if blocks, err = report.ReadBlocksFile(blocksPath); err != nil {
					return err
				}
			case in != "":
				text, err := ingest.ReadText(in)
				if err != nil {
					return err
				}
				blocks, _ = extract.ParseScript(text, ingest.ScriptID(in))
			default:
				return fmt.Errorf("either --blocks or --in is required")
			}

			switch reportKind {
			case "scenes":
				scenes := analysis.SceneDialogueDensity(blocks)
				if out == "" {
					return report.WriteSceneDensityCSV(os.Stdout, scenes)
				}
				return report.WriteSceneDensityFile(out, scenes)
			case "characters":
				rows := analysis.CharacterDialogueWords(blocks)
				if topN > 0 {
					rows = analysis.TopCharacters(rows, topN)
				}
				if out == "" {
					return report.WriteCharacterWordsCSV(os.Stdout, rows)
				}
				return report.WriteCharacterWordsFile(out, rows)
			default:
				return fmt.Errorf("unknown report %q (want \"scenes\" or \"characters\")", reportKind)
			}
		},
	}

	cmd.Flags().String("blocks", "", "Block CSV produced by \"slugline parse\"")
	cmd.Flags().String("in", "", "Normalized script file to parse on the fly")
	cmd.Flags().String("report", "scenes", "Report to compute: scenes or characters")
	cmd.Flags().Int("top-n", 0, "Limit the characters report to the top N speakers")
	cmd.Flags().String("out", "", "Output CSV file (default: stdout)")
	return cmd
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process a corpus of raw scripts end to end",
		Long: `Run the full pipeline over every raw script in a directory: normalize,
parse, validate, and export per-script block CSVs plus combined scene
and character metrics.

Configuration precedence: flags, then SLUGLINE_* environment variables,
then the YAML config file, then built-in defaults.

Example:
  slugline run --raw-dir data/raw --out-dir data/processed --workers 8`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("raw-dir") {
				cfg.RawDir, _ = cmd.Flags().GetString("raw-dir")
			}
			if cmd.Flags().Changed("clean-dir") {
				cfg.CleanDir, _ = cmd.Flags().GetString("clean-dir")
			}
			if cmd.Flags().Changed("out-dir") {
				cfg.OutDir, _ = cmd.Flags().GetString("out-dir")
			}
			if cmd.Flags().Changed("pattern") {
				cfg.Pattern, _ = cmd.Flags().GetString("pattern")
			}
			if cmd.Flags().Changed("only") {
				cfg.Only, _ = cmd.Flags().GetString("only")
			}
			if cmd.Flags().Changed("workers") {
				cfg.Workers, _ = cmd.Flags().GetInt("workers")
			}

			opts := extract.Options{
				StructuralReinjection: cfg.Normalize.StructuralReinjectionEnabled(),
				SplitWordRepair:       cfg.Normalize.SplitWordRepair,
			}
			if cmd.Flags().Changed("no-reinject") {
				noReinject, _ := cmd.Flags().GetBool("no-reinject")
				opts.StructuralReinjection = !noReinject
			}
			if cmd.Flags().Changed("split-repair") {
				opts.SplitWordRepair, _ = cmd.Flags().GetBool("split-repair")
			}

			writeClean, _ := cmd.Flags().GetBool("write-clean")
			strict, _ := cmd.Flags().GetBool("strict")
			reportPath, _ := cmd.Flags().GetString("report")

			logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				logger.SetLevel(log.DebugLevel)
			}

			runner := pipeline.NewRunner(pipeline.Config{
				RawDir:     cfg.RawDir,
				Pattern:    cfg.Pattern,
				Only:       cfg.Only,
				CleanDir:   cfg.CleanDir,
				WriteClean: writeClean,
				OutDir:     cfg.OutDir,
				Workers:    cfg.Workers,
				Normalize:  opts,
				Strict:     strict,
				Logger:     logger,
			})

			result, err := runner.Run(cmd.Context())
			if err != nil {
				return err
			}

			if reportPath != "" {
				data, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to encode run report: %w", err)
				}
				if err := os.WriteFile(reportPath, append(data, '\n'), 0644); err != nil {
					return fmt.Errorf("failed to write %s: %w", reportPath, err)
				}
			}

			if result.Failed > 0 {
				return fmt.Errorf("%d of %d documents failed", result.Failed, len(result.Entries))
			}
			return nil
		},
	}

	cmd.Flags().String("config", "", "YAML config file")
	cmd.Flags().String("raw-dir", "data/raw", "Directory of raw script files")
	cmd.Flags().String("clean-dir", "data/clean", "Directory for normalized text output")
	cmd.Flags().String("out-dir", "data/processed", "Directory for CSV output")
	cmd.Flags().String("pattern", "*.txt", "Glob pattern for raw files")
	cmd.Flags().String("only", "", "Process only files whose names contain this substring")
	cmd.Flags().Int("workers", 4, "Number of documents to process concurrently")
	cmd.Flags().Bool("write-clean", true, "Write <script_id>_clean.txt files")
	cmd.Flags().Bool("strict", false, "Fail documents that fail a quality gate")
	cmd.Flags().Bool("no-reinject", false, "Disable structural break reinjection")
	cmd.Flags().Bool("split-repair", false, "Repair words split by extraction")
	cmd.Flags().String("report", "", "Write the run report as JSON to this file")
	cmd.Flags().Bool("verbose", false, "Enable debug logging")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the slugline version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("slugline %s\n", version)
		},
	}
}

func printJSON(w *os.File, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode stats: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}
