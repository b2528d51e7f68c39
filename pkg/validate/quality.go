// Package validate runs quality gates over the normalize/parse pipeline.
// Heuristic classification degrades silently on inputs that violate its
// assumptions (mixed-case dialogue, nonstandard headings); the gates turn
// that degradation into visible warnings instead of letting it pass
// unnoticed. Gates never crash a run.
package validate

import (
	"fmt"

	"github.com/coolbeans/slugline/pkg/extract"
)

// Gate is one validation checkpoint over a processed document.
type Gate interface {
	// Name returns the unique identifier for this gate ("G0", "G1", "G2").
	Name() string

	// Run evaluates the gate against the provided context.
	Run(ctx *Context) *Result

	// Thresholds returns the default thresholds for this gate's metrics.
	Thresholds() map[string]float64
}

// Context carries everything a gate may inspect. Fields are populated as
// the pipeline progresses; earlier gates see zero values for later stages.
type Context struct {
	// SourcePath and SourceSize describe the raw input (G0+).
	SourcePath string
	SourceSize int64

	// NormalizeStats is available after normalization (G1+).
	NormalizeStats *extract.NormalizeStats

	// ParseStats and Blocks are available after parsing (G2).
	ParseStats *extract.ParseStats
	Blocks     []extract.Block

	// Config holds threshold overrides.
	Config *Config
}

// Config holds user-configurable gate settings.
type Config struct {
	// Thresholds overrides per-gate metric thresholds, keyed
	// "GateName.MetricName" (e.g. "G2.min_dialogue_ratio").
	Thresholds map[string]float64

	// Strict causes a failed gate to fail the document instead of only
	// warning.
	Strict bool
}

// DefaultConfig returns a config with no overrides.
func DefaultConfig() *Config {
	return &Config{Thresholds: make(map[string]float64)}
}

// Result is the outcome of running one gate.
type Result struct {
	Gate     string             `json:"gate"`
	Passed   bool               `json:"passed"`
	Warnings []string           `json:"warnings,omitempty"`
	Metrics  map[string]float64 `json:"metrics,omitempty"`
}

// Pipeline runs a sequence of gates in order.
type Pipeline struct {
	gates  []Gate
	config *Config
}

// NewPipeline creates a gate pipeline with the given config (nil means
// defaults).
func NewPipeline(config *Config) *Pipeline {
	if config == nil {
		config = DefaultConfig()
	}
	return &Pipeline{config: config}
}

// Register appends a gate to the pipeline.
func (p *Pipeline) Register(gate Gate) {
	p.gates = append(p.gates, gate)
}

// RegisterDefaultGates registers the standard source, normalize, and parse
// gates.
func (p *Pipeline) RegisterDefaultGates() {
	p.Register(&sourceGate{})
	p.Register(&normalizeGate{})
	p.Register(&parseGate{})
}

// RunAll runs every registered gate and returns their results.
func (p *Pipeline) RunAll(ctx *Context) []*Result {
	if ctx.Config == nil {
		ctx.Config = p.config
	}
	results := make([]*Result, 0, len(p.gates))
	for _, gate := range p.gates {
		results = append(results, gate.Run(ctx))
	}
	return results
}

// threshold resolves a gate metric threshold, preferring config overrides.
func threshold(ctx *Context, gate Gate, metric string) float64 {
	if ctx.Config != nil {
		if v, ok := ctx.Config.Thresholds[gate.Name()+"."+metric]; ok {
			return v
		}
	}
	return gate.Thresholds()[metric]
}

// sourceGate (G0) checks that the raw input exists and is non-trivial.
type sourceGate struct{}

func (g *sourceGate) Name() string { return "G0" }

func (g *sourceGate) Thresholds() map[string]float64 {
	return map[string]float64{"min_size_bytes": 1}
}

func (g *sourceGate) Run(ctx *Context) *Result {
	result := &Result{Gate: g.Name(), Passed: true, Metrics: map[string]float64{
		"size_bytes": float64(ctx.SourceSize),
	}}

	if float64(ctx.SourceSize) < threshold(ctx, g, "min_size_bytes") {
		result.Passed = false
		result.Warnings = append(result.Warnings, fmt.Sprintf("source %s is empty", ctx.SourcePath))
	}
	return result
}

// normalizeGate (G1) checks that normalization did not destroy the
// document: the canonical stream must retain a minimum fraction of the
// input lines.
type normalizeGate struct{}

func (g *normalizeGate) Name() string { return "G1" }

func (g *normalizeGate) Thresholds() map[string]float64 {
	return map[string]float64{"min_retained_lines": 0.2}
}

func (g *normalizeGate) Run(ctx *Context) *Result {
	result := &Result{Gate: g.Name(), Passed: true, Metrics: map[string]float64{}}
	stats := ctx.NormalizeStats
	if stats == nil || stats.LinesIn == 0 {
		return result
	}

	retained := float64(stats.LinesOut) / float64(stats.LinesIn)
	result.Metrics["retained_lines"] = retained

	if retained < threshold(ctx, g, "min_retained_lines") {
		result.Passed = false
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("normalization kept only %.0f%% of input lines", retained*100))
	}
	return result
}

// parseGate (G2) checks the shape of the parsed output. A screenplay with
// almost no dialogue blocks, or none at all, usually means the cue
// heuristics missed the script's formatting.
type parseGate struct{}

func (g *parseGate) Name() string { return "G2" }

func (g *parseGate) Thresholds() map[string]float64 {
	return map[string]float64{
		"min_scenes":         1,
		"min_blocks":         1,
		"min_dialogue_ratio": 0.05,
		"max_dialogue_ratio": 0.95,
	}
}

func (g *parseGate) Run(ctx *Context) *Result {
	result := &Result{Gate: g.Name(), Passed: true, Metrics: map[string]float64{}}
	stats := ctx.ParseStats
	if stats == nil {
		return result
	}

	result.Metrics["scenes"] = float64(stats.Scenes)
	result.Metrics["blocks"] = float64(stats.Blocks)

	if float64(stats.Scenes) < threshold(ctx, g, "min_scenes") {
		result.Passed = false
		result.Warnings = append(result.Warnings, "no scenes detected")
	}
	if float64(stats.Blocks) < threshold(ctx, g, "min_blocks") {
		result.Passed = false
		result.Warnings = append(result.Warnings, "no blocks emitted")
	}

	if stats.Blocks > 0 {
		ratio := float64(stats.DialogueBlocks) / float64(stats.Blocks)
		result.Metrics["dialogue_block_ratio"] = ratio

		if ratio < threshold(ctx, g, "min_dialogue_ratio") {
			result.Passed = false
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("dialogue ratio %.2f is suspiciously low; cue detection may have missed this script's formatting", ratio))
		} else if ratio > threshold(ctx, g, "max_dialogue_ratio") {
			result.Passed = false
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("dialogue ratio %.2f is suspiciously high; action text may be misclassified as dialogue", ratio))
		}
	}
	return result
}
