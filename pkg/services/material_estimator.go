package services

import (
	"regexp"

	"github.com/yardsketch/yardsketch-engine/pkg/models"
)

// catalogEntry describes one material the estimator can recognize in a
// design narrative. Entries are evaluated independently, in order.
type catalogEntry struct {
	name      string
	pattern   *regexp.Regexp
	unitPrice float64
	quantity  string
	category  string
}

// materialCatalog is the ordered keyword table the estimator matches against.
// Matched entries are emitted with totalPrice equal to unitPrice: the
// quantity is descriptive text only and is intentionally not multiplied.
var materialCatalog = []catalogEntry{
	{"Mulch", regexp.MustCompile(`(?i)mulch`), 3, "2 cubic yards", models.CategoryOther},
	{"Topsoil", regexp.MustCompile(`(?i)topsoil`), 25, "1 cubic yard", models.CategoryOther},
	{"Landscape Fabric", regexp.MustCompile(`(?i)fabric`), 0.5, "100 sq ft", models.CategoryOther},
	{"Decorative Stones", regexp.MustCompile(`(?i)stone`), 150, "1 ton", models.CategoryHardscape},
	{"Pavers", regexp.MustCompile(`(?i)paver`), 4, "1 sq ft", models.CategoryHardscape},
}

// fallbackMaterials is emitted when no catalog entry matches the narrative.
// Unlike catalog matches, these carry realistic price-times-quantity totals.
var fallbackMaterials = []models.Material{
	{Name: "Shrubs (Various)", Quantity: "10 plants", UnitPrice: 25, TotalPrice: 250, Category: models.CategoryPlants},
	{Name: "Perennials (Various)", Quantity: "20 plants", UnitPrice: 15, TotalPrice: 300, Category: models.CategoryPlants},
	{Name: "Mulch", Quantity: "2 cubic yards", UnitPrice: 3, TotalPrice: 6, Category: models.CategoryMulch},
}

// MaterialEstimator derives a structured cost estimate from an unstructured
// design narrative. It is pure: no I/O, no failure mode.
type MaterialEstimator struct{}

// NewMaterialEstimator creates a new estimator.
func NewMaterialEstimator() *MaterialEstimator {
	return &MaterialEstimator{}
}

// Estimate scans the narrative for known materials and returns the matched
// line items with their total. A narrative matching nothing yields the
// fallback planting bundle.
func (e *MaterialEstimator) Estimate(narrative string) ([]models.Material, float64) {
	var items []models.Material

	for _, entry := range materialCatalog {
		if entry.pattern.MatchString(narrative) {
			items = append(items, models.Material{
				Name:       entry.name,
				Quantity:   entry.quantity,
				UnitPrice:  entry.unitPrice,
				TotalPrice: entry.unitPrice,
				Category:   entry.category,
			})
		}
	}

	if len(items) == 0 {
		items = append(items, fallbackMaterials...)
	}

	var total float64
	for _, item := range items {
		total += item.TotalPrice
	}

	return items, total
}
