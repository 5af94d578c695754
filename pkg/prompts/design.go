// Package prompts builds the natural-language instructions sent to the
// generative service for landscape design proposals.
package prompts

import (
	"fmt"
	"strings"

	"github.com/yardsketch/yardsketch-engine/pkg/models"
)

// DesignSystemMessage frames the narrative model as a landscape designer.
const DesignSystemMessage = "You are an experienced landscape designer creating professional proposals. " +
	"Provide detailed, practical advice that sounds authoritative and knowledgeable."

// AnalysisSystemMessage frames the visual-characteristics analysis sub-call.
const AnalysisSystemMessage = "You are a landscape assessment specialist. Describe only what is visible in the photo."

// BuildDesignBrief creates the full design brief from project parameters.
func BuildDesignBrief(params *models.DesignParams) string {
	var brief strings.Builder

	brief.WriteString(fmt.Sprintf(
		"Create a professional landscape design proposal for a %d sq ft area with %s exposure in climate zone %s. "+
			"The design style should be %s.",
		params.SquareFootage, params.SunExposure, params.ClimateZone, params.DesignStyle))
	if params.Notes != "" {
		brief.WriteString(fmt.Sprintf(" Additional requirements: %s", params.Notes))
	}

	brief.WriteString("\n\nPlease provide:\n")
	brief.WriteString("1. A detailed design thesis explaining the design approach and plant selections\n")
	brief.WriteString("2. A comprehensive materials list with quantities and estimated costs\n")
	brief.WriteString("3. Design recommendations for this specific climate and sun exposure\n\n")
	brief.WriteString("Make it sound professional and experienced, as if written by a landscape designer with 20+ years of experience.")

	return brief.String()
}

// BuildSimplifiedBrief creates the degraded brief used for the single retry
// after a narrative failure. It drops everything but the essentials.
func BuildSimplifiedBrief(params *models.DesignParams) string {
	return fmt.Sprintf(
		"Write a landscape design proposal for a %d sq ft %s garden in climate zone %s. "+
			"Include a design thesis and a materials list.",
		params.SquareFootage, params.DesignStyle, params.ClimateZone)
}

// BuildImageAnalysisPrompt requests a short structured description of the
// uploaded property photo.
func BuildImageAnalysisPrompt() string {
	return "Briefly describe the visual characteristics of this property photo relevant to landscaping: " +
		"terrain, existing vegetation, structures, hardscape, light conditions. Keep it under 100 words."
}

// BuildImageEditPrompt asks the image-capable model to rework only the yard
// areas of the submitted photo, leaving structures untouched.
func BuildImageEditPrompt(params *models.DesignParams, narrative string) string {
	var prompt strings.Builder

	prompt.WriteString(fmt.Sprintf(
		"Using this photo of the property, produce an updated rendering of the yard redesigned in a %s style "+
			"for a %d sq ft area with %s exposure. ",
		params.DesignStyle, params.SquareFootage, params.SunExposure))
	prompt.WriteString("Modify only the landscaping and yard areas. Never alter existing structures, buildings, fences or driveways. ")
	if narrative != "" {
		prompt.WriteString("Follow this design direction:\n\n")
		prompt.WriteString(truncate(narrative, 1200))
	}

	return prompt.String()
}

// BuildImageGenerationPrompt creates the standalone text-to-image prompt.
// When a visual analysis of the original photo is available it is folded in
// so the rendering respects the real site.
func BuildImageGenerationPrompt(params *models.DesignParams, imageAnalysis string) string {
	var prompt strings.Builder

	prompt.WriteString(fmt.Sprintf(
		"Professional landscape design rendering of a %s style garden for a %d sq ft area with %s exposure. ",
		params.DesignStyle, params.SquareFootage, params.SunExposure))
	prompt.WriteString("Include appropriate plants, hardscaping, and design elements. ")
	if imageAnalysis != "" {
		prompt.WriteString(fmt.Sprintf("The site has these characteristics: %s ", truncate(imageAnalysis, 400)))
	}
	prompt.WriteString("High quality, photorealistic, professional landscape design visualization.")

	return prompt.String()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
