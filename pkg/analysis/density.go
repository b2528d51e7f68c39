// Package analysis computes aggregate metrics over parsed screenplay
// blocks: per-scene dialogue density and per-character dialogue totals.
package analysis

import (
	"github.com/coolbeans/slugline/pkg/extract"
)

// SceneDensity summarizes the dialogue/action word balance of one scene.
type SceneDensity struct {
	ScriptID      string  `json:"script_id"`
	SceneIndex    int     `json:"scene_index"`
	SceneHeading  string  `json:"scene_heading"`
	TotalWords    int     `json:"total_words"`
	DialogueWords int     `json:"dialogue_words"`
	ActionWords   int     `json:"action_words"`
	DialogueRatio float64 `json:"dialogue_ratio"`
}

// SceneDialogueDensity groups blocks by scene and computes word totals and
// the dialogue ratio per scene. Scene order follows the block sequence,
// whose scene indices are non-decreasing by construction.
func SceneDialogueDensity(blocks []extract.Block) []SceneDensity {
	var scenes []SceneDensity

	for _, b := range blocks {
		if len(scenes) == 0 || scenes[len(scenes)-1].SceneIndex != b.SceneIndex {
			scenes = append(scenes, SceneDensity{
				ScriptID:     b.ScriptID,
				SceneIndex:   b.SceneIndex,
				SceneHeading: b.SceneHeading,
			})
		}

		scene := &scenes[len(scenes)-1]
		scene.TotalWords += b.WordCount
		if b.BlockType == extract.BlockTypeDialogue {
			scene.DialogueWords += b.WordCount
		} else {
			scene.ActionWords += b.WordCount
		}
	}

	for i := range scenes {
		if scenes[i].TotalWords > 0 {
			scenes[i].DialogueRatio = float64(scenes[i].DialogueWords) / float64(scenes[i].TotalWords)
		}
	}
	return scenes
}
