package prompts

import (
	"strings"
	"testing"

	"github.com/yardsketch/yardsketch-engine/pkg/models"
)

func briefParams() *models.DesignParams {
	return &models.DesignParams{
		Name:          "Back Yard",
		ClimateZone:   "7a",
		SunExposure:   "full-sun",
		SquareFootage: 800,
		DesignStyle:   "modern",
	}
}

func TestBuildDesignBrief(t *testing.T) {
	params := briefParams()
	params.Notes = "keep the existing oak tree"

	brief := BuildDesignBrief(params)

	for _, want := range []string{"800 sq ft", "full-sun", "7a", "modern", "keep the existing oak tree", "materials list"} {
		if !strings.Contains(brief, want) {
			t.Errorf("expected brief to contain %q", want)
		}
	}
}

func TestBuildDesignBrief_NoNotes(t *testing.T) {
	brief := BuildDesignBrief(briefParams())

	if strings.Contains(brief, "Additional requirements") {
		t.Error("expected no requirements section without notes")
	}
}

func TestBuildSimplifiedBrief_IsShorter(t *testing.T) {
	params := briefParams()
	params.Notes = "a long set of special requests that the retry should not carry"

	full := BuildDesignBrief(params)
	simplified := BuildSimplifiedBrief(params)

	if len(simplified) >= len(full) {
		t.Error("expected simplified brief to be shorter than the full brief")
	}
	if strings.Contains(simplified, params.Notes) {
		t.Error("expected simplified brief to drop the notes")
	}
}

func TestBuildImageEditPrompt_ProtectsStructures(t *testing.T) {
	prompt := BuildImageEditPrompt(briefParams(), "Narrative direction here.")

	if !strings.Contains(prompt, "Never alter existing structures") {
		t.Error("expected structural protection clause")
	}
	if !strings.Contains(prompt, "Narrative direction here.") {
		t.Error("expected narrative to be folded in")
	}
}

func TestBuildImageEditPrompt_TruncatesNarrative(t *testing.T) {
	long := strings.Repeat("x", 5000)
	prompt := BuildImageEditPrompt(briefParams(), long)

	if strings.Contains(prompt, long) {
		t.Error("expected long narrative to be truncated")
	}
}

func TestBuildImageGenerationPrompt(t *testing.T) {
	withAnalysis := BuildImageGenerationPrompt(briefParams(), "Sloped lawn with a mature maple.")
	if !strings.Contains(withAnalysis, "Sloped lawn with a mature maple.") {
		t.Error("expected analysis to be folded in")
	}

	without := BuildImageGenerationPrompt(briefParams(), "")
	if strings.Contains(without, "characteristics") {
		t.Error("expected no site characteristics section without analysis")
	}
	if !strings.Contains(without, "photorealistic") {
		t.Error("expected quality directive")
	}
}
