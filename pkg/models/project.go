// Package models contains domain types for yardsketch-engine.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Project lifecycle states. A project is created as draft, transitions to
// completed exactly once when generation succeeds, and never reverts.
// Archived is a terminal state reachable from completed.
const (
	StatusDraft     = "draft"
	StatusCompleted = "completed"
	StatusArchived  = "archived"
)

// Material categories.
const (
	CategoryPlants    = "plants"
	CategoryHardscape = "hardscape"
	CategoryMulch     = "mulch"
	CategoryOther     = "other"
)

// SunExposure values accepted in design parameters.
var SunExposures = []string{"full-sun", "partial-sun", "shade"}

// DesignStyles accepted in design parameters.
var DesignStyles = []string{"modern", "traditional", "cottage", "tropical", "desert", "woodland"}

// Project is the persisted record of one design request and its outcome.
// Input parameters are immutable after creation; the derived fields are
// populated together when the project transitions to completed.
type Project struct {
	ID      uuid.UUID `json:"id"`
	OwnerID string    `json:"ownerId"`
	Name    string    `json:"name"`
	Status  string    `json:"status"`

	// Input parameters
	ClimateZone   string  `json:"climateZone"`
	SunExposure   string  `json:"sunExposure"`
	SquareFootage int     `json:"squareFootage"`
	DesignStyle   string  `json:"designStyle"`
	Budget        float64 `json:"budget,omitempty"`
	Description   string  `json:"description,omitempty"`

	// Derived fields
	OriginalImage   string     `json:"originalImage,omitempty"`
	GeneratedImages []string   `json:"generatedImages,omitempty"`
	DesignThesis    string     `json:"designThesis,omitempty"`
	ImageAnalysis   string     `json:"imageAnalysis,omitempty"`
	MaterialsList   []Material `json:"materialsList,omitempty"`
	TotalCost       float64    `json:"totalCost,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsCompleted reports whether the project has been finalized.
func (p *Project) IsCompleted() bool {
	return p.Status == StatusCompleted
}

// Material is one priced entry in the generated cost estimate.
// Quantity is descriptive text; TotalPrice is the list price, not a
// quantity multiplication.
type Material struct {
	Name       string  `json:"name"`
	Quantity   string  `json:"quantity"`
	UnitPrice  float64 `json:"unitPrice"`
	TotalPrice float64 `json:"totalPrice"`
	Category   string  `json:"category"`
}

// DesignParams is the client-supplied input for a new project.
type DesignParams struct {
	Name          string  `json:"name"`
	ClimateZone   string  `json:"climateZone"`
	SunExposure   string  `json:"sunExposure"`
	SquareFootage int     `json:"squareFootage"`
	DesignStyle   string  `json:"designStyle"`
	Budget        float64 `json:"budget,omitempty"`
	Notes         string  `json:"notes,omitempty"`
}

// GenerationResult is the transient output of the generative design client.
// GeneratedImages holds third-party URLs that may expire; they must be
// re-hosted before the enclosing request completes.
type GenerationResult struct {
	DesignThesis    string
	GeneratedImages []string
	ImageAnalysis   string
}
