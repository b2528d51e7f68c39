package extract

import (
	"strings"
)

// NormalizeStats records what the normalizer did to a document. The counts
// exist for observability only; they do not affect the output.
type NormalizeStats struct {
	LinesIn              int `json:"lines_in"`
	LinesOut             int `json:"lines_out"`
	RemovedPageNumbers   int `json:"removed_page_numbers"`
	RemovedFormFeedLines int `json:"removed_form_feed_lines"`
	MergedLines          int `json:"merged_lines"`
	SplitWordRepairs     int `json:"split_word_repairs"`
	ReinjectedBreaks     int `json:"reinjected_breaks"`
	MergedHeadings       int `json:"merged_headings"`
}

// Options configures the optional, best-effort normalizer stages.
type Options struct {
	// StructuralReinjection forces a line break before boundary-shaped
	// tokens that a PDF extraction merged into the middle of a prose line.
	// Enabled by default; heuristic and documented-lossy.
	StructuralReinjection bool

	// SplitWordRepair rejoins words the extraction split with stray spaces
	// ("sl ept" -> "slept"). Disabled by default; aggressive on short words.
	SplitWordRepair bool
}

// DefaultOptions returns the options used when none are supplied.
func DefaultOptions() Options {
	return Options{StructuralReinjection: true}
}

// Normalize repairs line-level damage introduced by PDF extraction and
// returns a canonical form of the document: artifacts removed, wrapped
// paragraphs unwrapped, and every scene heading, character cue, transition,
// and blank line on its own line. Normalize is total over any input string
// and never fails.
func Normalize(raw string, opts Options) (string, *NormalizeStats) {
	stats := &NormalizeStats{}

	lines := canonicalizeLines(raw)
	stats.LinesIn = len(lines)

	lines = removeArtifacts(lines, stats)

	if opts.SplitWordRepair {
		for i, line := range lines {
			lines[i] = repairSplitWords(line, stats)
		}
	}

	if opts.StructuralReinjection {
		lines = reinjectStructuralBreaks(lines, stats)
	}

	lines = mergeHeadingChunks(lines, stats)
	lines = resplitHeadingAction(lines, stats)
	lines = unwrapParagraphs(lines, stats)
	lines = CollapseBlankLines(lines)

	stats.LinesOut = len(lines)
	return strings.TrimSpace(strings.Join(lines, "\n")) + "\n", stats
}

// canonicalizeLines converts all line terminators to "\n" and strips
// trailing whitespace per line. Leading whitespace is preserved.
func canonicalizeLines(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")
	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return lines
}

// removeArtifacts drops page number lines and lines containing form-feed
// markers. All other lines pass through unchanged.
func removeArtifacts(lines []string, stats *NormalizeStats) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if HasFormFeed(line) {
			stats.RemovedFormFeedLines++
			continue
		}
		if IsPageNumber(line) {
			stats.RemovedPageNumbers++
			continue
		}
		out = append(out, line)
	}
	return out
}

// unwrapParagraphs merges wrapped lines between boundaries into single
// paragraph lines. Hard boundaries and blank lines flush the buffer and are
// copied through verbatim; consecutive fragments are joined with a single
// space, except after a trailing hyphen, which rejoins a word split across
// a line break with no inserted space.
func unwrapParagraphs(lines []string, stats *NormalizeStats) []string {
	out := make([]string, 0, len(lines))
	var buffer []string

	flush := func() {
		if len(buffer) > 0 {
			out = append(out, joinFragments(buffer, stats))
			buffer = buffer[:0]
		}
	}

	for _, line := range lines {
		if IsBlank(line) {
			flush()
			out = append(out, "")
			continue
		}
		if IsHardBoundary(line) {
			flush()
			out = append(out, line)
			continue
		}
		buffer = append(buffer, line)
	}
	flush()
	return out
}

// joinFragments joins buffered fragments into one paragraph.
func joinFragments(fragments []string, stats *NormalizeStats) string {
	joined := strings.TrimSpace(fragments[0])
	for _, next := range fragments[1:] {
		s := strings.TrimSpace(next)
		if s == "" {
			continue
		}
		if strings.HasSuffix(joined, "-") {
			joined += s
		} else {
			joined += " " + s
		}
		stats.MergedLines++
	}
	return joined
}

// CollapseBlankLines collapses every run of two or more consecutive blank
// lines to exactly one blank line. The operation is idempotent.
func CollapseBlankLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	prevBlank := false
	for _, line := range lines {
		blank := IsBlank(line)
		if blank && prevBlank {
			continue
		}
		if blank {
			out = append(out, "")
		} else {
			out = append(out, line)
		}
		prevBlank = blank
	}
	return out
}
