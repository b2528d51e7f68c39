package extract

import (
	"testing"
)

func TestParseActionAndDialogueBlocks(t *testing.T) {
	cleaned := "INT. ROOM - DAY\n" +
		"ALEX sits at a table.\n" +
		"\n" +
		"ALEX\n" +
		"I don't know what you're talking about.\n" +
		"\n" +
		"JAMIE\n" +
		"(quiet)\n" +
		"You never do.\n" +
		"\n"
	blocks, stats := ParseScript(cleaned, "sample")

	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d: %+v", len(blocks), blocks)
	}

	if blocks[0].BlockType != BlockTypeAction {
		t.Errorf("blocks[0].BlockType = %q, want ACTION", blocks[0].BlockType)
	}
	if blocks[0].Character != "" {
		t.Errorf("action block has character %q", blocks[0].Character)
	}

	if blocks[1].BlockType != BlockTypeDialogue {
		t.Errorf("blocks[1].BlockType = %q, want DIALOGUE", blocks[1].BlockType)
	}
	if blocks[1].Character != "ALEX" {
		t.Errorf("blocks[1].Character = %q, want ALEX", blocks[1].Character)
	}
	if blocks[1].Text != "I don't know what you're talking about." {
		t.Errorf("blocks[1].Text = %q", blocks[1].Text)
	}

	if blocks[2].Character != "JAMIE" {
		t.Errorf("blocks[2].Character = %q, want JAMIE", blocks[2].Character)
	}
	if blocks[2].Text != "(quiet) You never do." {
		t.Errorf("blocks[2].Text = %q, want parenthetical kept inline", blocks[2].Text)
	}

	if stats.Scenes != 1 || stats.Blocks != 3 || stats.DialogueBlocks != 2 || stats.ActionBlocks != 1 {
		t.Errorf("stats = %+v, want 1 scene, 3 blocks, 2 dialogue, 1 action", stats)
	}
}

func TestParseStripsCharacterModifiers(t *testing.T) {
	cleaned := "INT. HALLWAY - NIGHT\n" +
		"\n" +
		"FLETCHER (O.S.)\n" +
		"Not my tempo.\n" +
		"\n"
	blocks, _ := ParseScript(cleaned, "sample")

	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if blocks[0].Character != "FLETCHER" {
		t.Errorf("Character = %q, want FLETCHER", blocks[0].Character)
	}
}

func TestParseCueBeforeFirstHeadingIsNotASpeaker(t *testing.T) {
	cleaned := "WHIPLASH\n" +
		"Written by Damien Chazelle\n" +
		"\n" +
		"INT. PRACTICE ROOM - NIGHT\n" +
		"NEIMAN\n" +
		"Sorry.\n"
	blocks, _ := ParseScript(cleaned, "whiplash")

	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d: %+v", len(blocks), blocks)
	}

	// The title-page block is action text in the sentinel scene.
	if blocks[0].BlockType != BlockTypeAction {
		t.Errorf("title block type = %q, want ACTION", blocks[0].BlockType)
	}
	if blocks[0].SceneHeading != NoSceneHeading {
		t.Errorf("title block scene heading = %q, want %q", blocks[0].SceneHeading, NoSceneHeading)
	}
	if blocks[0].SceneIndex != 0 {
		t.Errorf("title block scene index = %d, want 0", blocks[0].SceneIndex)
	}
	if blocks[0].Text != "WHIPLASH Written by Damien Chazelle" {
		t.Errorf("title block text = %q", blocks[0].Text)
	}

	// After the first real heading, cues become speakers again.
	if blocks[1].BlockType != BlockTypeDialogue || blocks[1].Character != "NEIMAN" {
		t.Errorf("blocks[1] = %+v, want NEIMAN dialogue", blocks[1])
	}
	if blocks[1].SceneIndex != 1 {
		t.Errorf("blocks[1].SceneIndex = %d, want 1", blocks[1].SceneIndex)
	}
}

func TestParseDocumentWithoutHeadings(t *testing.T) {
	cleaned := "Some prose without any scene structure.\n" +
		"More prose.\n"
	blocks, stats := ParseScript(cleaned, "headerless")

	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if blocks[0].SceneIndex != 0 || blocks[0].SceneHeading != NoSceneHeading {
		t.Errorf("block = %+v, want sentinel scene at index 0", blocks[0])
	}
	if stats.Scenes != 1 {
		t.Errorf("stats.Scenes = %d, want 1", stats.Scenes)
	}
}

func TestParseTransitionFlushesWithoutOpeningBlock(t *testing.T) {
	cleaned := "INT. ROOM - DAY\n" +
		"He walks out.\n" +
		"CUT TO:\n" +
		"EXT. STREET - DAY\n" +
		"He hails a cab.\n"
	blocks, _ := ParseScript(cleaned, "sample")

	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d: %+v", len(blocks), blocks)
	}
	if blocks[0].Text != "He walks out." {
		t.Errorf("blocks[0].Text = %q", blocks[0].Text)
	}
	if blocks[1].SceneIndex != 1 || blocks[1].Text != "He hails a cab." {
		t.Errorf("blocks[1] = %+v", blocks[1])
	}
}

func TestParseSceneAndBlockIndexMonotonicity(t *testing.T) {
	cleaned := "INT. A - DAY\n" +
		"Action one.\n" +
		"\n" +
		"DAVID\n" +
		"Line one.\n" +
		"\n" +
		"Action two.\n" +
		"EXT. B - NIGHT\n" +
		"Action three.\n" +
		"\n" +
		"BENJI\n" +
		"Line two.\n"
	blocks, stats := ParseScript(cleaned, "sample")

	prevScene := -1
	expectBlock := 0
	for _, b := range blocks {
		if b.SceneIndex < prevScene {
			t.Fatalf("scene index decreased: %+v", b)
		}
		if b.SceneIndex > prevScene {
			expectBlock = 0
		}
		if b.BlockIndex != expectBlock {
			t.Errorf("block %+v has index %d, want %d", b, b.BlockIndex, expectBlock)
		}
		prevScene = b.SceneIndex
		expectBlock++
	}

	if stats.Scenes != 2 {
		t.Errorf("stats.Scenes = %d, want 2", stats.Scenes)
	}
}

func TestParseDiscardsEmptyBuffers(t *testing.T) {
	// A cue immediately followed by a blank line opens a dialogue block
	// that never receives text; nothing is emitted for it.
	cleaned := "INT. A - DAY\n" +
		"DAVID\n" +
		"\n" +
		"DAVID\n" +
		"Hello.\n"
	blocks, _ := ParseScript(cleaned, "sample")

	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d: %+v", len(blocks), blocks)
	}
	if blocks[0].BlockIndex != 0 {
		t.Errorf("BlockIndex = %d, want 0 (empty buffer must not advance it)", blocks[0].BlockIndex)
	}
	if blocks[0].Text != "Hello." {
		t.Errorf("Text = %q, want %q", blocks[0].Text, "Hello.")
	}
}

func TestParseWordCounts(t *testing.T) {
	cleaned := "INT. A - DAY\n" +
		"DAVID\n" +
		"You wanna get some breakfast?\n"
	blocks, _ := ParseScript(cleaned, "sample")

	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if blocks[0].WordCount != 5 {
		t.Errorf("WordCount = %d, want 5", blocks[0].WordCount)
	}
}

func TestParseScriptIDPropagates(t *testing.T) {
	blocks, _ := ParseScript("INT. A - DAY\nAction.\n", "my_script")
	if len(blocks) != 1 || blocks[0].ScriptID != "my_script" {
		t.Errorf("blocks = %+v, want ScriptID my_script", blocks)
	}
}

func TestIsParenthetical(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"(quiet)", true},
		{"  (beat)  ", true},
		{"()", true},
		{"(unclosed", false},
		{"closed)", false},
		{"plain", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := IsParenthetical(tc.in); got != tc.want {
			t.Errorf("IsParenthetical(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestCountWords(t *testing.T) {
	if got := CountWords("  one two   three "); got != 3 {
		t.Errorf("CountWords = %d, want 3", got)
	}
	if got := CountWords(""); got != 0 {
		t.Errorf("CountWords(\"\") = %d, want 0", got)
	}
}
