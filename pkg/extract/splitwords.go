package extract

import (
	"regexp"
	"strings"
)

var (
	// letterRunPattern matches runs of three or more single lowercase
	// letters separated by spaces ("w a i t" -> "wait").
	letterRunPattern = regexp.MustCompile(`\b(?:[a-z]\s+){2,}[a-z]\b`)

	// singleLeftPattern matches a stranded single letter before a word
	// ("D avid" -> "David").
	singleLeftPattern = regexp.MustCompile(`\b([A-Za-z])\s+([A-Za-z]{2,})\b`)

	// singleRightPattern matches a stranded single letter after a word
	// ("Davi d" -> "David").
	singleRightPattern = regexp.MustCompile(`\b([A-Za-z]{2,})\s+([A-Za-z])\b`)

	alphaPattern = regexp.MustCompile(`^[A-Za-z]+$`)
)

// shortWords are real English words that the split-word patterns must not
// glue onto their neighbors.
var shortWords = map[string]bool{
	"a": true, "i": true, "am": true, "an": true, "as": true, "at": true,
	"be": true, "by": true, "do": true, "go": true, "he": true, "if": true,
	"in": true, "is": true, "it": true, "me": true, "my": true, "no": true,
	"of": true, "on": true, "or": true, "so": true, "to": true, "up": true,
	"us": true, "we": true,
	"all": true, "and": true, "any": true, "are": true, "but": true,
	"can": true, "did": true, "for": true, "get": true, "got": true,
	"had": true, "has": true, "her": true, "him": true, "his": true,
	"its": true, "let": true, "man": true, "new": true, "not": true,
	"now": true, "old": true, "one": true, "our": true, "out": true,
	"say": true, "see": true, "she": true, "the": true, "two": true,
	"was": true, "way": true, "who": true, "why": true, "yet": true,
	"you": true,
}

// repairSplitWords conservatively rejoins words that the PDF extraction
// split with stray spaces. Single stranded letters and letter runs are
// rejoined first; then adjacent fragment pairs are joined only when one
// side is a fragment of at most two letters and neither side is a real
// short word. The repair is heuristic and opt-in.
func repairSplitWords(line string, stats *NormalizeStats) string {
	if !strings.Contains(line, " ") {
		return line
	}

	original := line

	line = letterRunPattern.ReplaceAllStringFunc(line, func(m string) string {
		return strings.Join(strings.Fields(m), "")
	})

	line = singleLeftPattern.ReplaceAllStringFunc(line, func(m string) string {
		parts := singleLeftPattern.FindStringSubmatch(m)
		if shortWords[strings.ToLower(parts[1])] {
			return m
		}
		return parts[1] + parts[2]
	})

	line = singleRightPattern.ReplaceAllStringFunc(line, func(m string) string {
		parts := singleRightPattern.FindStringSubmatch(m)
		if shortWords[strings.ToLower(parts[2])] {
			return m
		}
		return parts[1] + parts[2]
	})

	line = joinFragmentPairs(line)

	if line != original {
		stats.SplitWordRepairs++
	}
	return line
}

// joinFragmentPairs scans the line's tokens and merges adjacent pairs that
// look like one split word ("sl ept", "Decla re"). Leading indentation is
// preserved; interior runs of whitespace collapse to single spaces.
func joinFragmentPairs(line string) string {
	tokens := strings.Fields(line)
	if len(tokens) < 2 {
		return line
	}

	indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]

	out := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		if i+1 < len(tokens) && isSplitWordPair(tokens[i], tokens[i+1]) {
			out = append(out, tokens[i]+tokens[i+1])
			i++
			continue
		}
		out = append(out, tokens[i])
	}
	return indent + strings.Join(out, " ")
}

// isSplitWordPair reports whether two adjacent tokens are likely the halves
// of one word. Both must be purely alphabetic, at least one must be a
// two-letter-or-shorter fragment, and neither may be a real short word.
func isSplitWordPair(left, right string) bool {
	if !alphaPattern.MatchString(left) || !alphaPattern.MatchString(right) {
		return false
	}
	if len(left) > 2 && len(right) > 2 {
		return false
	}
	if shortWords[strings.ToLower(left)] || shortWords[strings.ToLower(right)] {
		return false
	}
	return true
}
