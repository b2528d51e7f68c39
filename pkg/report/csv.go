// Package report serializes parsed blocks and aggregate metrics to CSV for
// downstream analytics and plotting tools.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/coolbeans/slugline/pkg/analysis"
	"github.com/coolbeans/slugline/pkg/extract"
)

// WriteBlocksCSV writes one row per block: script_id, scene_index,
// scene_heading, block_index, block_type, character, word_count, text.
func WriteBlocksCSV(w io.Writer, blocks []extract.Block) error {
	writer := csv.NewWriter(w)

	header := []string{"script_id", "scene_index", "scene_heading", "block_index", "block_type", "character", "word_count", "text"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, b := range blocks {
		row := []string{
			b.ScriptID,
			strconv.Itoa(b.SceneIndex),
			b.SceneHeading,
			strconv.Itoa(b.BlockIndex),
			string(b.BlockType),
			b.Character,
			strconv.Itoa(b.WordCount),
			b.Text,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write block row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ReadBlocksCSV reads a block CSV written by WriteBlocksCSV back into
// blocks, so analysis can run over previously exported files.
func ReadBlocksCSV(r io.Reader) ([]extract.Block, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read block CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("block CSV is empty")
	}

	var blocks []extract.Block
	for i, row := range rows[1:] {
		if len(row) != 8 {
			return nil, fmt.Errorf("block CSV row %d has %d fields, want 8", i+2, len(row))
		}
		sceneIndex, err := strconv.Atoi(row[1])
		if err != nil {
			return nil, fmt.Errorf("block CSV row %d: bad scene_index %q", i+2, row[1])
		}
		blockIndex, err := strconv.Atoi(row[3])
		if err != nil {
			return nil, fmt.Errorf("block CSV row %d: bad block_index %q", i+2, row[3])
		}
		wordCount, err := strconv.Atoi(row[6])
		if err != nil {
			return nil, fmt.Errorf("block CSV row %d: bad word_count %q", i+2, row[6])
		}
		blocks = append(blocks, extract.Block{
			ScriptID:     row[0],
			SceneIndex:   sceneIndex,
			SceneHeading: row[2],
			BlockIndex:   blockIndex,
			BlockType:    extract.BlockType(row[4]),
			Character:    row[5],
			WordCount:    wordCount,
			Text:         row[7],
		})
	}
	return blocks, nil
}

// ReadBlocksFile reads a block CSV from path.
func ReadBlocksFile(path string) ([]extract.Block, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()
	return ReadBlocksCSV(file)
}

// WriteSceneDensityCSV writes one row per scene with word totals and the
// dialogue ratio.
func WriteSceneDensityCSV(w io.Writer, scenes []analysis.SceneDensity) error {
	writer := csv.NewWriter(w)

	header := []string{"script_id", "scene_index", "scene_heading", "total_words", "dialogue_words", "action_words", "dialogue_ratio"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, s := range scenes {
		row := []string{
			s.ScriptID,
			strconv.Itoa(s.SceneIndex),
			s.SceneHeading,
			strconv.Itoa(s.TotalWords),
			strconv.Itoa(s.DialogueWords),
			strconv.Itoa(s.ActionWords),
			strconv.FormatFloat(s.DialogueRatio, 'f', 4, 64),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write scene row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteCharacterWordsCSV writes one row per character with dialogue word
// totals.
func WriteCharacterWordsCSV(w io.Writer, rows []analysis.CharacterWords) error {
	writer := csv.NewWriter(w)

	header := []string{"script_id", "character", "dialogue_words", "blocks"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, r := range rows {
		row := []string{
			r.ScriptID,
			r.Character,
			strconv.Itoa(r.DialogueWords),
			strconv.Itoa(r.Blocks),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write character row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteBlocksFile writes the block CSV to path, creating or truncating it.
func WriteBlocksFile(path string, blocks []extract.Block) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteBlocksCSV(w, blocks)
	})
}

// WriteSceneDensityFile writes the scene density CSV to path.
func WriteSceneDensityFile(path string, scenes []analysis.SceneDensity) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteSceneDensityCSV(w, scenes)
	})
}

// WriteCharacterWordsFile writes the character totals CSV to path.
func WriteCharacterWordsFile(path string, rows []analysis.CharacterWords) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteCharacterWordsCSV(w, rows)
	})
}

func writeFile(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
