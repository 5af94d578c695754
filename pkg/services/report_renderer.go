package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"

	"github.com/yardsketch/yardsketch-engine/pkg/models"
)

const (
	pageMargin     = 20.0
	lineHeight     = 6.0
	tableRowHeight = 6.0
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// ReportRenderer lays out a finalized project as a paginated PDF report.
// Any absent field simply omits its section.
type ReportRenderer struct {
	httpClient *http.Client
	logger     *zap.Logger
}

// NewReportRenderer creates a report renderer.
func NewReportRenderer(logger *zap.Logger) *ReportRenderer {
	return &ReportRenderer{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger.Named("report"),
	}
}

// ReportFilename derives the attachment filename for a project report.
func ReportFilename(projectName string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(projectName), "_")
	slug = strings.Trim(slug, "_")
	if slug == "" {
		slug = "project"
	}
	return slug + "_report.pdf"
}

// Render produces the PDF bytes for a project.
func (r *ReportRenderer) Render(ctx context.Context, project *models.Project) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, pageMargin)
	pdf.AddPage()

	pageWidth, pageHeight := pdf.GetPageSize()
	contentWidth := pageWidth - 2*pageMargin
	y := pageMargin

	// checkNewPage starts a new page when the next block would run past the
	// printable height. Returns true if a page break happened.
	checkNewPage := func(requiredHeight float64) bool {
		if y+requiredHeight > pageHeight-pageMargin {
			pdf.AddPage()
			y = pageMargin
			return true
		}
		return false
	}

	// Branded header
	pdf.SetFillColor(34, 197, 94)
	pdf.Rect(0, 0, pageWidth, 40, "F")
	pdf.SetFillColor(22, 163, 74)
	pdf.Rect(0, 0, pageWidth, 10, "F")

	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 24)
	pdf.Text(pageMargin, 25, "YardSketch")
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Text(pageMargin, 35, "Project Report")

	y = 50

	// Title and rule
	pdf.SetTextColor(17, 24, 39)
	pdf.SetFont("Helvetica", "B", 20)
	pdf.Text(pageMargin, y, project.Name)
	y += 15

	pdf.SetDrawColor(34, 197, 94)
	pdf.SetLineWidth(0.5)
	pdf.Line(pageMargin, y, pageMargin+100, y)
	y += 10

	// Creation date and status
	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(107, 114, 128)
	pdf.Text(pageMargin, y, fmt.Sprintf("Created: %s", project.CreatedAt.Format("January 2, 2006")))
	y += 8
	pdf.Text(pageMargin, y, fmt.Sprintf("Status: %s", project.Status))
	y += 15

	// Specification block
	pdf.SetTextColor(17, 24, 39)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Text(pageMargin, y, "Project Specifications")
	y += 10

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(107, 114, 128)
	specs := []string{
		fmt.Sprintf("Climate Zone: %s", project.ClimateZone),
		fmt.Sprintf("Sun Exposure: %s", strings.ReplaceAll(project.SunExposure, "-", " ")),
		fmt.Sprintf("Square Footage: %d sq ft", project.SquareFootage),
		fmt.Sprintf("Design Style: %s", project.DesignStyle),
	}
	if project.Budget > 0 {
		specs = append(specs, fmt.Sprintf("Budget: $%.0f", project.Budget))
	}
	for _, spec := range specs {
		pdf.Text(pageMargin, y, spec)
		y += 6
	}
	y += 10

	// Original property photo
	if project.OriginalImage != "" {
		checkNewPage(80)
		pdf.SetTextColor(17, 24, 39)
		pdf.SetFont("Helvetica", "B", 14)
		pdf.Text(pageMargin, y, "Original Property")
		y += 10

		if r.embedImage(ctx, pdf, project.OriginalImage, pageMargin, y, 80, 60) {
			y += 70
		}
	}

	// Generated renderings, up to two side by side
	if len(project.GeneratedImages) > 0 {
		checkNewPage(100)
		pdf.SetTextColor(17, 24, 39)
		pdf.SetFont("Helvetica", "B", 14)
		pdf.Text(pageMargin, y, "Generated Designs")
		y += 10

		count := len(project.GeneratedImages)
		if count > 2 {
			count = 2
		}
		for i := 0; i < count; i++ {
			r.embedImage(ctx, pdf, project.GeneratedImages[i], pageMargin+float64(i)*90, y, 80, 60)
		}
		y += 70
	}

	// Design narrative
	if project.DesignThesis != "" {
		checkNewPage(50)
		pdf.SetTextColor(17, 24, 39)
		pdf.SetFont("Helvetica", "B", 14)
		pdf.Text(pageMargin, y, "Design Thesis")
		y += 10

		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(55, 65, 81)
		for _, paragraph := range strings.Split(project.DesignThesis, "\n") {
			if paragraph == "" {
				y += 4
				continue
			}
			for _, line := range pdf.SplitText(paragraph, contentWidth) {
				checkNewPage(lineHeight)
				pdf.Text(pageMargin, y, line)
				y += 4
			}
		}
		y += 10
	}

	// Materials table
	if len(project.MaterialsList) > 0 {
		checkNewPage(80)
		pdf.SetTextColor(17, 24, 39)
		pdf.SetFont("Helvetica", "B", 14)
		pdf.Text(pageMargin, y, "Materials & Cost Breakdown")
		y += 10

		pdf.SetFont("Helvetica", "", 9)

		drawTableHeader := func() {
			pdf.SetFillColor(249, 250, 251)
			pdf.Rect(pageMargin, y-5, contentWidth, 8, "F")
			pdf.SetTextColor(107, 114, 128)
			pdf.Text(pageMargin+2, y, "Category")
			pdf.Text(pageMargin+30, y, "Item")
			pdf.Text(pageMargin+100, y, "Quantity")
			pdf.Text(pageMargin+140, y, "Unit Price")
			pdf.Text(pageMargin+170, y, "Total")
			y += 8
		}
		drawTableHeader()

		for _, material := range project.MaterialsList {
			if checkNewPage(15) {
				// Reprint the header when a page break interrupts the table.
				drawTableHeader()
			}
			pdf.SetTextColor(17, 24, 39)
			pdf.Text(pageMargin+2, y, material.Category)
			pdf.Text(pageMargin+30, y, material.Name)
			pdf.Text(pageMargin+100, y, material.Quantity)
			pdf.Text(pageMargin+140, y, fmt.Sprintf("$%g", material.UnitPrice))
			pdf.Text(pageMargin+170, y, fmt.Sprintf("$%g", material.TotalPrice))
			y += tableRowHeight
		}
		y += 5

		if project.TotalCost > 0 {
			checkNewPage(15)
			pdf.SetFont("Helvetica", "B", 12)
			pdf.SetTextColor(34, 197, 94)
			pdf.Text(pageMargin, y, fmt.Sprintf("Total Estimated Cost: $%g", project.TotalCost))
		}
	}

	// Footer on the final page
	pdf.SetFillColor(249, 250, 251)
	pdf.Rect(0, pageHeight-20, pageWidth, 20, "F")
	pdf.SetTextColor(107, 114, 128)
	pdf.SetFont("Helvetica", "", 8)
	pdf.Text(pageMargin, pageHeight-10, fmt.Sprintf("Generated on %s by YardSketch", time.Now().Format("1/2/2006")))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	return buf.Bytes(), nil
}

// embedImage fetches an image URL and places it on the page. A failed fetch
// skips the image rather than failing the report.
func (r *ReportRenderer) embedImage(ctx context.Context, pdf *fpdf.Fpdf, url string, x, y, w, h float64) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.logger.Warn("failed to fetch report image", zap.String("url", url), zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		r.logger.Warn("report image fetch returned non-success status",
			zap.String("url", url),
			zap.Int("status", resp.StatusCode))
		return false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetBytes))
	if err != nil {
		return false
	}

	imageType := "JPG"
	if strings.Contains(resp.Header.Get("Content-Type"), "png") {
		imageType = "PNG"
	}

	opts := fpdf.ImageOptions{ImageType: imageType}
	pdf.RegisterImageOptionsReader(url, opts, bytes.NewReader(body))
	if pdf.Err() {
		// Unreadable image data; clear the error so the rest of the
		// report still renders.
		r.logger.Warn("failed to embed report image", zap.String("url", url), zap.Error(pdf.Error()))
		pdf.ClearError()
		return false
	}
	pdf.ImageOptions(url, x, y, w, h, false, opts, 0, "")
	return !pdf.Err()
}
