package extract

import (
	"strings"
)

// BlockType distinguishes the two kinds of emitted blocks.
type BlockType string

const (
	BlockTypeAction   BlockType = "ACTION"
	BlockTypeDialogue BlockType = "DIALOGUE"
)

// NoSceneHeading is the sentinel heading for content that precedes the
// first detected scene heading in a document.
const NoSceneHeading = "NO_SCENE_HEADING"

// Block is the atomic unit of parsed output: one contiguous run of action
// prose or dialogue speech within one scene. Blocks are append-only; once
// emitted they are never mutated.
type Block struct {
	ScriptID     string    `json:"script_id"`
	SceneIndex   int       `json:"scene_index"`
	SceneHeading string    `json:"scene_heading"`
	BlockIndex   int       `json:"block_index"`
	BlockType    BlockType `json:"block_type"`
	Character    string    `json:"character,omitempty"`
	Text         string    `json:"text"`
	WordCount    int       `json:"word_count"`
}

// ParseStats summarizes an emitted block sequence.
type ParseStats struct {
	Scenes         int `json:"scenes"`
	Blocks         int `json:"blocks"`
	DialogueBlocks int `json:"dialogue_blocks"`
	ActionBlocks   int `json:"action_blocks"`
}

// Parser is a single-pass state machine over a canonical line stream. It
// owns all mutable parsing state, so each document gets its own Parser and
// documents can be processed in parallel with no coordination.
type Parser struct {
	scriptID         string
	seenFirstHeading bool

	sceneIndex   int
	sceneHeading string

	blockIndex      int
	bufferType      BlockType
	bufferCharacter string
	bufferLines     []string

	blocks []Block
	stats  ParseStats
}

// NewParser creates a Parser for one document.
func NewParser(scriptID string) *Parser {
	return &Parser{
		scriptID:     scriptID,
		sceneIndex:   -1,
		sceneHeading: NoSceneHeading,
	}
}

// Parse consumes normalized text and returns the ordered block list. A
// final flush at end of input emits any open block.
func (p *Parser) Parse(cleaned string) []Block {
	for _, line := range strings.Split(cleaned, "\n") {
		p.consumeLine(line)
	}
	p.flush()
	return p.blocks
}

// Stats returns the summary statistics for the parsed document.
func (p *Parser) Stats() *ParseStats {
	stats := p.stats
	return &stats
}

// ParseScript parses normalized text into blocks and summary statistics.
func ParseScript(cleaned, scriptID string) ([]Block, *ParseStats) {
	parser := NewParser(scriptID)
	blocks := parser.Parse(cleaned)
	return blocks, parser.Stats()
}

// consumeLine advances the state machine by one canonical line.
func (p *Parser) consumeLine(line string) {
	if IsSceneHeading(line) {
		p.seenFirstHeading = true
		p.flush()
		p.startScene(line)
		return
	}

	if IsCharacterCue(line) {
		// Cue-shaped lines before the first scene heading are title-page
		// or credit text, never speakers; they fold into the open buffer.
		if !p.seenFirstHeading {
			if p.bufferType == "" {
				p.startActionBlock()
			}
			p.bufferLines = append(p.bufferLines, strings.TrimSpace(line))
			return
		}

		p.flush()
		p.startDialogueBlock(StripCharacterModifiers(line))
		return
	}

	if IsBlank(line) {
		// Blocks never span a blank line.
		p.flush()
		return
	}

	if IsTransition(line) {
		p.flush()
		return
	}

	if p.bufferType == "" {
		p.startActionBlock()
	}

	// Parentheticals stay inline with the dialogue they direct; they are
	// not split into a separate block type.
	if p.bufferType == BlockTypeDialogue && IsParenthetical(line) {
		p.bufferLines = append(p.bufferLines, strings.TrimSpace(line))
		return
	}

	p.bufferLines = append(p.bufferLines, strings.TrimSpace(line))
}

// startScene advances to a new scene and resets the per-scene block index.
func (p *Parser) startScene(headingLine string) {
	p.sceneIndex++
	p.sceneHeading = strings.TrimSpace(headingLine)
	p.stats.Scenes = p.sceneIndex + 1
	p.blockIndex = 0
}

// startDialogueBlock opens a dialogue block for the given speaker, creating
// a sentinel scene first if no scene is open.
func (p *Parser) startDialogueBlock(speaker string) {
	if p.sceneIndex < 0 {
		p.startScene(NoSceneHeading)
	}
	p.bufferType = BlockTypeDialogue
	p.bufferCharacter = speaker
	p.bufferLines = p.bufferLines[:0]
}

// startActionBlock opens an action block, creating a sentinel scene first
// if no scene is open.
func (p *Parser) startActionBlock() {
	if p.sceneIndex < 0 {
		p.startScene(NoSceneHeading)
	}
	p.bufferType = BlockTypeAction
	p.bufferCharacter = ""
	p.bufferLines = p.bufferLines[:0]
}

// flush emits the open block if its buffer is non-empty, then resets the
// buffer state. An empty buffer is discarded silently.
func (p *Parser) flush() {
	if p.bufferType == "" || len(p.bufferLines) == 0 {
		p.resetBuffer()
		return
	}

	fragments := make([]string, 0, len(p.bufferLines))
	for _, line := range p.bufferLines {
		if line != "" {
			fragments = append(fragments, line)
		}
	}
	text := strings.Join(fragments, " ")
	if text == "" {
		p.resetBuffer()
		return
	}

	block := Block{
		ScriptID:     p.scriptID,
		SceneIndex:   p.sceneIndex,
		SceneHeading: p.sceneHeading,
		BlockIndex:   p.blockIndex,
		BlockType:    p.bufferType,
		Text:         text,
		WordCount:    CountWords(text),
	}
	if p.bufferType == BlockTypeDialogue {
		block.Character = p.bufferCharacter
	}
	p.blocks = append(p.blocks, block)

	p.stats.Blocks++
	if p.bufferType == BlockTypeDialogue {
		p.stats.DialogueBlocks++
	} else {
		p.stats.ActionBlocks++
	}
	p.blockIndex++

	p.resetBuffer()
}

func (p *Parser) resetBuffer() {
	p.bufferType = ""
	p.bufferCharacter = ""
	p.bufferLines = p.bufferLines[:0]
}

// CountWords returns the whitespace-token count of text.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// IsParenthetical reports whether the trimmed line is entirely wrapped in
// parentheses, e.g. a dialogue direction like "(quiet)". Parentheticals are
// kept inline with the dialogue block they belong to.
func IsParenthetical(line string) bool {
	s := strings.TrimSpace(line)
	return len(s) >= 2 && strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")")
}
