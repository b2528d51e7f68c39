package extract

import (
	"reflect"
	"strings"
	"testing"
)

func TestNormalizeRemovesPageNumbersAndFormFeeds(t *testing.T) {
	raw := "\f11\n\n37\nINT. ROOM - DAY\nSome action.\n"
	cleaned, stats := Normalize(raw, DefaultOptions())

	if strings.ContainsRune(cleaned, '\f') {
		t.Error("form feed survived normalization")
	}
	if strings.Contains(cleaned, "37\n") {
		t.Error("page number line survived normalization")
	}
	if stats.RemovedFormFeedLines < 1 {
		t.Errorf("RemovedFormFeedLines = %d, want >= 1", stats.RemovedFormFeedLines)
	}
	if stats.RemovedPageNumbers < 1 {
		t.Errorf("RemovedPageNumbers = %d, want >= 1", stats.RemovedPageNumbers)
	}
}

func TestNormalizePreservesBoundaries(t *testing.T) {
	raw := "INT. WARSAW AIRPORT - MORNING\n" +
		"The boys walk through the airport, both exhausted from the\n" +
		"flight.\n" +
		"DAVID\n" +
		"You wanna get some breakfast?\n"
	cleaned, _ := Normalize(raw, DefaultOptions())

	if !strings.Contains(cleaned, "INT. WARSAW AIRPORT - MORNING\n") {
		t.Errorf("scene heading not preserved as standalone line:\n%s", cleaned)
	}
	if !strings.Contains(cleaned, "\nDAVID\n") {
		t.Errorf("character cue not preserved as standalone line:\n%s", cleaned)
	}
}

func TestNormalizeUnwrapsWrappedActionLines(t *testing.T) {
	raw := "INT. CAR - MORNING\n" +
		"The boys are in the car, heading into town. Benji is staring\n" +
		"out the window; David is staring at his phone, AirPods in his\n" +
		"ears.\n"
	cleaned, stats := Normalize(raw, DefaultOptions())

	want := "Benji is staring out the window; David is staring at his phone, AirPods in his ears."
	if !strings.Contains(cleaned, want) {
		t.Errorf("wrapped action lines not merged:\n%s", cleaned)
	}
	if stats.MergedLines != 2 {
		t.Errorf("MergedLines = %d, want 2", stats.MergedLines)
	}
}

func TestNormalizeJoinsHyphenatedLineBreaks(t *testing.T) {
	raw := "BENJI\n" +
		"Hey, there's our guy-\n" +
		"Benji points to a Polish DRIVER holding a sign.\n"
	cleaned, _ := Normalize(raw, DefaultOptions())

	if !strings.Contains(cleaned, "our guy-Benji points") {
		t.Errorf("hyphen join inserted a space:\n%s", cleaned)
	}
}

func TestNormalizeReinjectsEmbeddedSceneHeading(t *testing.T) {
	raw := "He grabbed his bag and ran. INT. CAR - DAY\nThe boys drive.\n"
	cleaned, stats := Normalize(raw, DefaultOptions())

	if !strings.Contains(cleaned, "\nINT. CAR - DAY\n") {
		t.Errorf("embedded scene heading not split onto its own line:\n%s", cleaned)
	}
	if stats.ReinjectedBreaks != 1 {
		t.Errorf("ReinjectedBreaks = %d, want 1", stats.ReinjectedBreaks)
	}
}

func TestNormalizeReinjectsEmbeddedCharacterCue(t *testing.T) {
	raw := "The door slams. DAVID\nWait up!\n"
	cleaned, _ := Normalize(raw, DefaultOptions())

	if !strings.Contains(cleaned, "\nDAVID\n") {
		t.Errorf("embedded character cue not split onto its own line:\n%s", cleaned)
	}
}

func TestNormalizeReinjectionLeavesAcronymsAlone(t *testing.T) {
	raw := "He moved to the U.S. TV was never the same.\n"
	cleaned, _ := Normalize(raw, DefaultOptions())

	if !strings.Contains(cleaned, "U.S. TV was never the same.") {
		t.Errorf("acronym-adjacent prose was corrupted:\n%s", cleaned)
	}
}

func TestNormalizeReinjectionCanBeDisabled(t *testing.T) {
	raw := "He grabbed his bag and ran. INT. CAR - DAY\n"
	cleaned, stats := Normalize(raw, Options{StructuralReinjection: false})

	if strings.Contains(cleaned, "\nINT. CAR - DAY") {
		t.Errorf("reinjection ran while disabled:\n%s", cleaned)
	}
	if stats.ReinjectedBreaks != 0 {
		t.Errorf("ReinjectedBreaks = %d, want 0", stats.ReinjectedBreaks)
	}
}

func TestNormalizeMergesWrappedSceneHeading(t *testing.T) {
	raw := "EXT.\nBQE\n- DAY\nTraffic roars past.\n"
	cleaned, stats := Normalize(raw, DefaultOptions())

	if !strings.Contains(cleaned, "EXT. BQE - DAY\n") {
		t.Errorf("wrapped scene heading not merged:\n%s", cleaned)
	}
	if stats.MergedHeadings != 1 {
		t.Errorf("MergedHeadings = %d, want 1", stats.MergedHeadings)
	}
	if !strings.Contains(cleaned, "Traffic roars past.") {
		t.Errorf("action text after merged heading lost:\n%s", cleaned)
	}
}

func TestNormalizeHeadingMergeStopsAtCap(t *testing.T) {
	// No time-of-day token anywhere: the merge must stop after six lines
	// instead of swallowing the rest of the document.
	raw := "INT.\nONE\nTWO\nTHREE\nFOUR\nFIVE\nSIX\nSEVEN\nEIGHT\n"
	cleaned, _ := Normalize(raw, DefaultOptions())

	if strings.Contains(cleaned, "SEVEN EIGHT") && strings.Contains(cleaned, "INT. ONE TWO THREE FOUR FIVE SIX SEVEN") {
		t.Errorf("heading merge ran past the line cap:\n%s", cleaned)
	}
}

func TestNormalizeResplitsHeadingFromTrailingAction(t *testing.T) {
	raw := "INT. CAR - DAY The boys drive into town.\n"
	cleaned, _ := Normalize(raw, DefaultOptions())

	lines := strings.Split(strings.TrimSpace(cleaned), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines after re-split, got %d: %q", len(lines), lines)
	}
	if lines[0] != "INT. CAR - DAY" {
		t.Errorf("heading line = %q, want %q", lines[0], "INT. CAR - DAY")
	}
	if lines[1] != "The boys drive into town." {
		t.Errorf("action line = %q, want %q", lines[1], "The boys drive into town.")
	}
}

func TestNormalizeCollapsesBlankRuns(t *testing.T) {
	raw := "INT. ROOM - DAY\n\n\n\nSome action.\n\n\nMore action.\n"
	cleaned, _ := Normalize(raw, DefaultOptions())

	if strings.Contains(cleaned, "\n\n\n") {
		t.Errorf("blank run survived collapsing:\n%q", cleaned)
	}
}

func TestNormalizeOutputHasSingleTrailingNewline(t *testing.T) {
	cleaned, _ := Normalize("INT. ROOM - DAY\nAction.\n\n\n", DefaultOptions())
	if !strings.HasSuffix(cleaned, "\n") {
		t.Error("output missing trailing newline")
	}
	if strings.HasSuffix(cleaned, "\n\n") {
		t.Error("output has more than one trailing newline")
	}
}

func TestNormalizeCanonicalizesLineEndings(t *testing.T) {
	cleaned, _ := Normalize("INT. A - DAY\r\nAction one.\rAction two.\n", DefaultOptions())
	if strings.ContainsRune(cleaned, '\r') {
		t.Errorf("carriage return survived normalization: %q", cleaned)
	}
}

func TestCollapseBlankLinesIdempotent(t *testing.T) {
	inputs := [][]string{
		{},
		{""},
		{"", "", ""},
		{"a", "", "", "b", "", "", "", "c"},
		{"", "a", ""},
		{"INT. ROOM - DAY", "", "", "DAVID", "Hello.", ""},
	}
	for _, lines := range inputs {
		once := CollapseBlankLines(lines)
		twice := CollapseBlankLines(once)
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("CollapseBlankLines not idempotent for %q: %q != %q", lines, once, twice)
		}
	}
}

func TestNormalizeLineCounts(t *testing.T) {
	raw := "INT. ROOM - DAY\nSome action.\n"
	_, stats := Normalize(raw, DefaultOptions())
	if stats.LinesIn != 3 {
		t.Errorf("LinesIn = %d, want 3", stats.LinesIn)
	}
	if stats.LinesOut < 2 {
		t.Errorf("LinesOut = %d, want >= 2", stats.LinesOut)
	}
}
