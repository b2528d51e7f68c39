package extract

import (
	"regexp"
	"strings"
)

var (
	// headingBreakPattern matches a scene heading starter token embedded
	// mid-line after sentence-ending punctuation, a dash, or a closing
	// quote or bracket ("...and ran. INT. CAR - DAY").
	headingBreakPattern = regexp.MustCompile(`([.!?\-"')\]]) +((?:INT\./EXT\.|INT\.|EXT\.|I/E)(?:\s.*)?)$`)

	// cueBreakPattern matches a trailing all-caps run preceded by the same
	// punctuation cues; the run still has to pass IsCharacterCue before a
	// break is forced.
	cueBreakPattern = regexp.MustCompile(`([.!?\-"')\]]) +([A-Z][A-Z0-9 '().\-]*)$`)

	// headingActionPattern splits action prose trailing a time-of-day
	// suffix on the same line as a scene heading. The greedy prefix keeps
	// the split at the last " - DAY"-style suffix on the line.
	headingActionPattern = regexp.MustCompile(`^(.*\s-\s*(?:DAY|NIGHT|MORNING|EVENING|AFTERNOON|CONTINUOUS))\b[ \t]+(\S.*)$`)
)

// maxHeadingMergeLines caps how many physical lines a wrapped scene heading
// may span before the merge gives up, so a heading missing its time-of-day
// token cannot swallow unrelated action text.
const maxHeadingMergeLines = 6

// minReinjectedCueLength rejects very short trailing caps runs (acronyms
// like "U.S." after a period) from forcing a break.
const minReinjectedCueLength = 3

// reinjectStructuralBreaks forces a line break before boundary-shaped
// tokens that a PDF extraction merged into the middle of a prose line. The
// repair is best-effort: it only fires when the token is preceded by
// sentence-ending punctuation, a dash, or a closing quote or bracket, and
// it never alters a line without such an adjacency cue.
func reinjectStructuralBreaks(lines []string, stats *NormalizeStats) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		head, tail, ok := splitEmbeddedBoundary(line)
		if !ok {
			out = append(out, line)
			continue
		}
		stats.ReinjectedBreaks++
		out = append(out, head, tail)
	}
	return out
}

// splitEmbeddedBoundary finds an embedded boundary token in the line and
// returns the prose before it and the boundary-led remainder.
func splitEmbeddedBoundary(line string) (head, tail string, ok bool) {
	if m := headingBreakPattern.FindStringSubmatchIndex(line); m != nil {
		// Keep the punctuation on the prose side.
		return strings.TrimRight(line[:m[4]], " "), line[m[4]:], true
	}

	if m := cueBreakPattern.FindStringSubmatchIndex(line); m != nil {
		candidate := line[m[4]:]
		if len(candidate) >= minReinjectedCueLength && IsCharacterCue(candidate) {
			return strings.TrimRight(line[:m[4]], " "), candidate, true
		}
	}

	return "", "", false
}

// mergeHeadingChunks rejoins a scene heading that a PDF wrapped across
// several physical lines (e.g. "EXT." / "BQE" / "- DAY") into one line.
// Starting from a line that is exactly a scene heading starter token, it
// greedily consumes subsequent non-blank lines until the accumulated
// heading contains a time-of-day token as a whole word, or the merge cap is
// reached.
func mergeHeadingChunks(lines []string, stats *NormalizeStats) []string {
	out := make([]string, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if !isSceneStarterToken(strings.ToUpper(trimmed)) {
			out = append(out, lines[i])
			continue
		}

		heading := trimmed
		consumed := 0
		j := i + 1
		for j < len(lines) && consumed < maxHeadingMergeLines {
			next := strings.TrimSpace(lines[j])
			if next == "" {
				break
			}
			heading += " " + next
			consumed++
			j++
			if containsTimeOfDayWord(strings.ToUpper(heading)) {
				break
			}
		}

		if consumed == 0 {
			out = append(out, lines[i])
			continue
		}

		out = append(out, strings.Join(strings.Fields(heading), " "))
		stats.MergedHeadings++
		i = j - 1
	}
	return out
}

// resplitHeadingAction is the inverse repair: when action prose follows the
// time-of-day suffix on the same line as a scene heading, the heading and
// the prose are split onto separate lines so the heading stands alone.
func resplitHeadingAction(lines []string, stats *NormalizeStats) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if !IsSceneHeading(line) {
			out = append(out, line)
			continue
		}
		m := headingActionPattern.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			out = append(out, line)
			continue
		}
		stats.ReinjectedBreaks++
		out = append(out, m[1], m[2])
	}
	return out
}

// isSceneStarterToken reports whether the uppercase string is exactly one
// of the scene heading starter tokens.
func isSceneStarterToken(upper string) bool {
	for _, starter := range sceneStarters {
		if upper == starter {
			return true
		}
	}
	return false
}
