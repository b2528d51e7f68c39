// Package pipeline batch-processes a corpus of raw script files: each
// document is loaded, normalized, parsed, gated, and reported. Documents
// are independent, so the runner fans them out over a bounded worker pool
// with no shared parsing state.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/coolbeans/slugline/pkg/analysis"
	"github.com/coolbeans/slugline/pkg/extract"
	"github.com/coolbeans/slugline/pkg/ingest"
	"github.com/coolbeans/slugline/pkg/report"
	"github.com/coolbeans/slugline/pkg/validate"
)

// Config controls a batch run.
type Config struct {
	// RawDir holds the raw script files; Pattern globs within it.
	RawDir  string
	Pattern string

	// Only, when non-empty, restricts the run to files whose names
	// contain it (case-insensitive).
	Only string

	// CleanDir receives "<script_id>_clean.txt" files when WriteClean is
	// set.
	CleanDir   string
	WriteClean bool

	// OutDir receives the per-script block CSVs and the combined metric
	// CSVs.
	OutDir string

	// Workers bounds the number of documents processed concurrently.
	Workers int

	// Normalize configures the normalizer stages.
	Normalize extract.Options

	// Strict marks a document failed when a quality gate fails.
	Strict bool

	// Logger receives progress output; nil disables logging.
	Logger *log.Logger
}

// Entry records the outcome of processing one document.
type Entry struct {
	ScriptID       string                  `json:"script_id"`
	Path           string                  `json:"path"`
	Status         string                  `json:"status"` // "ok", "degraded", or "failed"
	Error          string                  `json:"error,omitempty"`
	Warnings       []string                `json:"warnings,omitempty"`
	NormalizeStats *extract.NormalizeStats `json:"normalize_stats,omitempty"`
	ParseStats     *extract.ParseStats     `json:"parse_stats,omitempty"`
}

// Report summarizes a batch run.
type Report struct {
	Entries   []Entry `json:"entries"`
	Succeeded int     `json:"succeeded"`
	Degraded  int     `json:"degraded"`
	Failed    int     `json:"failed"`
}

// Runner executes batch runs.
type Runner struct {
	config Config
}

// NewRunner creates a Runner with the given config.
func NewRunner(config Config) *Runner {
	if config.Workers < 1 {
		config.Workers = 1
	}
	if config.Pattern == "" {
		config.Pattern = "*.txt"
	}
	return &Runner{config: config}
}

// Run discovers raw script files and processes each one. Per-document
// failures are recorded in the report, not returned as errors; Run only
// fails on setup problems (discovery, output directories) or context
// cancellation.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	sources, err := ingest.Discover(r.config.RawDir, r.config.Pattern, r.config.Only)
	if err != nil {
		return nil, err
	}

	if r.config.OutDir != "" {
		if err := os.MkdirAll(r.config.OutDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if r.config.WriteClean && r.config.CleanDir != "" {
		if err := os.MkdirAll(r.config.CleanDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create clean directory: %w", err)
		}
	}

	entries := make([]Entry, len(sources))
	blocksBySource := make([][]extract.Block, len(sources))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < r.config.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				entries[i], blocksBySource[i] = r.processDocument(sources[i])
			}
		}()
	}

	for i := range sources {
		if ctx.Err() != nil {
			close(jobs)
			wg.Wait()
			return nil, ctx.Err()
		}
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return nil, ctx.Err()
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	reportOut := &Report{Entries: entries}
	var allScenes []analysis.SceneDensity
	var allCharacters []analysis.CharacterWords
	for i, entry := range entries {
		switch entry.Status {
		case "ok":
			reportOut.Succeeded++
		case "degraded":
			reportOut.Degraded++
		default:
			reportOut.Failed++
		}
		if entry.Status != "failed" {
			allScenes = append(allScenes, analysis.SceneDialogueDensity(blocksBySource[i])...)
			allCharacters = append(allCharacters, analysis.CharacterDialogueWords(blocksBySource[i])...)
		}
	}

	if r.config.OutDir != "" && len(sources) > 0 {
		if err := report.WriteSceneDensityFile(filepath.Join(r.config.OutDir, "scene_dialogue_density.csv"), allScenes); err != nil {
			return nil, err
		}
		if err := report.WriteCharacterWordsFile(filepath.Join(r.config.OutDir, "character_dialogue_words.csv"), allCharacters); err != nil {
			return nil, err
		}
	}

	if logger := r.config.Logger; logger != nil {
		logger.Info("batch run complete",
			"documents", len(sources),
			"succeeded", reportOut.Succeeded,
			"degraded", reportOut.Degraded,
			"failed", reportOut.Failed)
	}
	return reportOut, nil
}

// processDocument runs the full per-document pipeline and returns its
// entry plus the parsed blocks for aggregate reporting.
func (r *Runner) processDocument(source ingest.Source) (Entry, []extract.Block) {
	entry := Entry{ScriptID: source.ScriptID, Path: source.Path, Status: "ok"}
	logger := r.config.Logger

	raw, warnings, err := ingest.Load(source.Path)
	if err != nil {
		entry.Status = "failed"
		entry.Error = err.Error()
		if logger != nil {
			logger.Error("failed to load source", "script", source.ScriptID, "err", err)
		}
		return entry, nil
	}
	entry.Warnings = append(entry.Warnings, warnings...)

	info, err := os.Stat(source.Path)
	var size int64
	if err == nil {
		size = info.Size()
	}

	cleaned, normStats := extract.Normalize(raw, r.config.Normalize)
	entry.NormalizeStats = normStats

	if r.config.WriteClean && r.config.CleanDir != "" {
		cleanPath := filepath.Join(r.config.CleanDir, source.ScriptID+"_clean.txt")
		if err := os.WriteFile(cleanPath, []byte(cleaned), 0644); err != nil {
			entry.Status = "failed"
			entry.Error = fmt.Sprintf("failed to write %s: %v", cleanPath, err)
			return entry, nil
		}
	}

	blocks, parseStats := extract.ParseScript(cleaned, source.ScriptID)
	entry.ParseStats = parseStats

	gates := validate.NewPipeline(nil)
	gates.RegisterDefaultGates()
	for _, result := range gates.RunAll(&validate.Context{
		SourcePath:     source.Path,
		SourceSize:     size,
		NormalizeStats: normStats,
		ParseStats:     parseStats,
		Blocks:         blocks,
	}) {
		if !result.Passed {
			entry.Warnings = append(entry.Warnings, result.Warnings...)
			if r.config.Strict {
				entry.Status = "failed"
				entry.Error = fmt.Sprintf("gate %s failed", result.Gate)
			} else if entry.Status == "ok" {
				entry.Status = "degraded"
			}
		}
	}
	if entry.Status == "failed" {
		return entry, nil
	}

	if r.config.OutDir != "" {
		blocksPath := filepath.Join(r.config.OutDir, source.ScriptID+"_blocks.csv")
		if err := report.WriteBlocksFile(blocksPath, blocks); err != nil {
			entry.Status = "failed"
			entry.Error = err.Error()
			return entry, nil
		}
	}

	if logger != nil {
		logger.Info("processed script",
			"script", source.ScriptID,
			"scenes", parseStats.Scenes,
			"blocks", parseStats.Blocks,
			"dialogue", parseStats.DialogueBlocks,
			"action", parseStats.ActionBlocks)
	}
	return entry, blocks
}
