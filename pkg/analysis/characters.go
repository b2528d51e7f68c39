package analysis

import (
	"sort"

	"github.com/coolbeans/slugline/pkg/extract"
)

// CharacterWords totals the dialogue spoken by one character.
type CharacterWords struct {
	ScriptID      string `json:"script_id"`
	Character     string `json:"character"`
	DialogueWords int    `json:"dialogue_words"`
	Blocks        int    `json:"blocks"`
}

// CharacterDialogueWords totals dialogue words per character across the
// block sequence. Results are sorted by word count descending, then by
// character name for a stable order.
func CharacterDialogueWords(blocks []extract.Block) []CharacterWords {
	totals := make(map[string]*CharacterWords)

	for _, b := range blocks {
		if b.BlockType != extract.BlockTypeDialogue || b.Character == "" {
			continue
		}
		row, ok := totals[b.Character]
		if !ok {
			row = &CharacterWords{ScriptID: b.ScriptID, Character: b.Character}
			totals[b.Character] = row
		}
		row.DialogueWords += b.WordCount
		row.Blocks++
	}

	rows := make([]CharacterWords, 0, len(totals))
	for _, row := range totals {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].DialogueWords != rows[j].DialogueWords {
			return rows[i].DialogueWords > rows[j].DialogueWords
		}
		return rows[i].Character < rows[j].Character
	})
	return rows
}

// TopCharacters returns the first n rows, or all rows when n is zero or
// negative or exceeds the row count.
func TopCharacters(rows []CharacterWords, n int) []CharacterWords {
	if n <= 0 || n >= len(rows) {
		return rows
	}
	return rows[:n]
}
