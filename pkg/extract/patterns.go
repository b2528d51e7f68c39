// Package extract converts loosely formatted, PDF-extracted screenplay text
// into typed, scene-grouped blocks. It provides three layers: a stateless
// line classifier, a normalizer that repairs extraction damage into a
// canonical line stream, and a block parser that emits ordered Action and
// Dialogue blocks.
package extract

import (
	"regexp"
	"strings"
)

// LineClass identifies the structural role of a single line of text.
type LineClass int

const (
	LineBlank LineClass = iota
	LineFormFeedArtifact
	LinePageNumberArtifact
	LineSceneHeading
	LineTransitionCue
	LineCharacterCue
	LinePlainText
)

// String returns the string representation of a LineClass.
func (c LineClass) String() string {
	switch c {
	case LineBlank:
		return "blank"
	case LineFormFeedArtifact:
		return "form_feed_artifact"
	case LinePageNumberArtifact:
		return "page_number_artifact"
	case LineSceneHeading:
		return "scene_heading"
	case LineTransitionCue:
		return "transition_cue"
	case LineCharacterCue:
		return "character_cue"
	default:
		return "plain_text"
	}
}

var (
	// sceneHeadingPattern matches lines beginning with a scene heading
	// starter token (INT., EXT., INT./EXT., I/E) followed by a space or end
	// of line. The explicit boundary matters: \b after the trailing dot
	// never matches before a space, since neither side is a word character.
	sceneHeadingPattern = regexp.MustCompile(`(?i)^\s*(INT\./EXT\.|INT\.|EXT\.|I/E)(?:[ \t]|$)`)

	// pageNumberPattern matches lines containing only a page number.
	pageNumberPattern = regexp.MustCompile(`^\s*\d+\s*$`)

	// transitionPattern matches editing transitions such as "CUT TO:" or
	// "DISSOLVE TO:" occupying an entire trimmed line.
	transitionPattern = regexp.MustCompile(`^[A-Z0-9 '().\-]+TO:$`)

	// transitionFixedPattern matches the transition cues that do not end
	// in "TO:" (fades and smash cuts).
	transitionFixedPattern = regexp.MustCompile(`^(FADE IN:|FADE OUT:|SMASH CUT:)$`)

	// cueAllowedPattern restricts character cues to the uppercase
	// character set used by screenplay conventions.
	cueAllowedPattern = regexp.MustCompile(`^[A-Z0-9 '().\-]+$`)
)

// sceneStarters are the scene heading starter tokens in upper case.
var sceneStarters = []string{"INT./EXT.", "INT.", "EXT.", "I/E"}

// cueBlocklist holds beat markers, time-of-day tokens, and other standalone
// uppercase lines that must never be treated as a speaker.
var cueBlocklist = map[string]bool{
	"AFTERNOON":     true,
	"CONTINUOUS":    true,
	"DAWN":          true,
	"DAY":           true,
	"DUSK":          true,
	"EVENING":       true,
	"INSERT":        true,
	"LATER":         true,
	"MIDNIGHT":      true,
	"MOMENTS LATER": true,
	"MORNING":       true,
	"NIGHT":         true,
	"NOON":          true,
	"SAME":          true,
	"SAME TIME":     true,
	"SUNRISE":       true,
	"SUNSET":        true,
	"TITLE":         true,
}

// timeOfDayTokens are the tokens that terminate a scene heading.
var timeOfDayTokens = []string{"DAY", "NIGHT", "MORNING", "EVENING", "AFTERNOON", "CONTINUOUS"}

// maxCueWords and maxCueLength cap character cue size. Cues are short
// standalone lines; the caps keep long all-caps action sentences and scene
// heading fragments out of the speaker set.
const (
	maxCueWords  = 4
	maxCueLength = 30
)

// Classify tags a line with exactly one LineClass. Classification is a pure
// function of the line's text; the rules are evaluated in a fixed precedence
// order and the first match wins.
func Classify(line string) LineClass {
	switch {
	case IsBlank(line):
		return LineBlank
	case HasFormFeed(line):
		return LineFormFeedArtifact
	case IsPageNumber(line):
		return LinePageNumberArtifact
	case IsSceneHeading(line):
		return LineSceneHeading
	case IsTransition(line):
		return LineTransitionCue
	case IsCharacterCue(line):
		return LineCharacterCue
	default:
		return LinePlainText
	}
}

// IsBlank reports whether the line is empty after trimming whitespace.
func IsBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// HasFormFeed reports whether the line contains a form-feed control
// character left behind by PDF page extraction.
func HasFormFeed(line string) bool {
	return strings.ContainsRune(line, '\f')
}

// IsPageNumber reports whether the trimmed line consists entirely of digits.
func IsPageNumber(line string) bool {
	return pageNumberPattern.MatchString(line)
}

// IsSceneHeading reports whether the line starts a new scene.
func IsSceneHeading(line string) bool {
	return sceneHeadingPattern.MatchString(line)
}

// IsTransition reports whether the trimmed line is an editing transition
// such as "CUT TO:", "DISSOLVE TO:", "SMASH CUT:", or "FADE OUT:".
func IsTransition(line string) bool {
	s := strings.TrimSpace(line)
	return transitionPattern.MatchString(s) || transitionFixedPattern.MatchString(s)
}

// IsCharacterCue reports whether the trimmed line names the speaker of the
// dialogue that follows. A cue is a short uppercase standalone line that is
// not a scene heading, transition, beat marker, or credit line.
func IsCharacterCue(line string) bool {
	s := strings.TrimSpace(line)
	if s == "" {
		return false
	}

	// Scene headings, transitions, and page numbers take precedence over
	// cues.
	if IsSceneHeading(s) || IsTransition(s) || IsPageNumber(s) {
		return false
	}

	// A heading-shaped line with unusual spacing is still not a speaker.
	upper := strings.ToUpper(s)
	for _, starter := range sceneStarters {
		if strings.HasPrefix(upper, starter) {
			return false
		}
	}

	if !cueAllowedPattern.MatchString(s) {
		return false
	}

	if len(strings.Fields(s)) > maxCueWords {
		return false
	}
	if len(s) > maxCueLength {
		return false
	}

	if cueBlocklist[upper] {
		return false
	}

	// Title-page credit lines ("WRITTEN BY ...") come in uppercase too.
	if strings.Contains(upper, "BY ") {
		return false
	}

	// Slug fragments like "ROOFTOP - NIGHT" pass the character set test but
	// carry a time-of-day suffix no speaker would.
	if strings.Contains(s, " - ") && hasTimeOfDaySuffix(upper) {
		return false
	}

	return true
}

// IsHardBoundary reports whether the line forces the current buffered block
// to flush: scene headings, character cues, and transitions.
func IsHardBoundary(line string) bool {
	return IsSceneHeading(line) || IsCharacterCue(line) || IsTransition(line)
}

// StripCharacterModifiers removes trailing parenthetical modifiers from a
// character cue, so "FLETCHER (O.S.)" becomes "FLETCHER".
func StripCharacterModifiers(cue string) string {
	s := strings.TrimSpace(cue)
	if idx := strings.Index(s, "("); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// hasTimeOfDaySuffix reports whether the uppercase string ends with a
// time-of-day token.
func hasTimeOfDaySuffix(upper string) bool {
	for _, tok := range timeOfDayTokens {
		if strings.HasSuffix(upper, tok) {
			return true
		}
	}
	return false
}

// containsTimeOfDayWord reports whether the uppercase string contains a
// time-of-day token as a whole word.
func containsTimeOfDayWord(upper string) bool {
	for _, field := range strings.FieldsFunc(upper, func(r rune) bool {
		return r == ' ' || r == '-' || r == '.' || r == ','
	}) {
		for _, tok := range timeOfDayTokens {
			if field == tok {
				return true
			}
		}
	}
	return false
}
