package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/yardsketch/yardsketch-engine/pkg/apperrors"
	"github.com/yardsketch/yardsketch-engine/pkg/llm"
	"github.com/yardsketch/yardsketch-engine/pkg/models"
	"github.com/yardsketch/yardsketch-engine/pkg/prompts"
	"github.com/yardsketch/yardsketch-engine/pkg/retry"
)

// inlineImageURL extracts image links embedded in a chat response.
var inlineImageURL = regexp.MustCompile(`(?i)https?://[^\s)\]>"']+\.(?:png|jpe?g|gif|webp)(?:\?[^\s)\]>"']*)?`)

// DesignGenerator produces a landscape design proposal (narrative, generated
// renderings, optional photo analysis) from project parameters.
//
// The image-aware path is preferred when an original photo exists because it
// yields context-respecting output, but it is the less reliable path, so
// image generation runs through an ordered list of fallback strategies. The
// first strategy to yield at least one image wins; exhausting them all does
// not discard a successful narrative.
type DesignGenerator struct {
	client     llm.GenerativeClient
	imageCount int
	retryCfg   *retry.Config
	logger     *zap.Logger
}

// NewDesignGenerator creates a design generator. imageCount controls how
// many renderings the standalone generation path requests.
func NewDesignGenerator(client llm.GenerativeClient, imageCount int, logger *zap.Logger) *DesignGenerator {
	if imageCount <= 0 {
		imageCount = 3
	}
	return &DesignGenerator{
		client:     client,
		imageCount: imageCount,
		retryCfg:   retry.DefaultConfig(),
		logger:     logger.Named("generator"),
	}
}

// imageStrategy is one step of the image-generation fallback chain.
type imageStrategy struct {
	name string
	run  func(ctx context.Context) ([]string, error)
}

// Generate runs the full proposal pipeline. originalImageURL may be empty;
// when present the narrative and rendering requests reference the photo.
//
// Failure policy: a narrative failure is retried once with a simplified
// brief; if that also fails, the error is GenerationError{stage:
// "narrative"}. Image strategies failing after a usable narrative do not
// fail the operation (the result simply carries no images); only a result
// with neither narrative nor images is a GenerationError{stage: "image"}.
func (g *DesignGenerator) Generate(ctx context.Context, params *models.DesignParams, originalImageURL string) (*models.GenerationResult, error) {
	result, err := g.attempt(ctx, params, originalImageURL, prompts.BuildDesignBrief(params))
	if err == nil {
		return result, nil
	}

	if !apperrors.IsGeneration(err) {
		return nil, err
	}

	g.logger.Warn("generation attempt failed, retrying with simplified brief",
		zap.Error(err))

	result, retryErr := g.attempt(ctx, params, originalImageURL, prompts.BuildSimplifiedBrief(params))
	if retryErr != nil {
		// Surface the original failure; the retry context is in the logs.
		return nil, err
	}
	return result, nil
}

// attempt runs one narrative + image pass with the given brief.
func (g *DesignGenerator) attempt(ctx context.Context, params *models.DesignParams, originalImageURL, brief string) (*models.GenerationResult, error) {
	if originalImageURL == "" {
		return g.attemptTextOnly(ctx, params, brief)
	}
	return g.attemptWithImage(ctx, params, originalImageURL, brief)
}

// attemptTextOnly runs the narrative and the standalone rendering request
// concurrently; neither depends on the other's output.
func (g *DesignGenerator) attemptTextOnly(ctx context.Context, params *models.DesignParams, brief string) (*models.GenerationResult, error) {
	type imageOutcome struct {
		urls []string
		err  error
	}
	imagesCh := make(chan imageOutcome, 1)

	go func() {
		urls, err := g.generateStandalone(ctx, params, "")
		imagesCh <- imageOutcome{urls: urls, err: err}
	}()

	narrative, err := retry.DoWithResult(ctx, g.retryCfg, func() (string, error) {
		return g.client.ChatCompletion(ctx, brief, prompts.DesignSystemMessage)
	})
	images := <-imagesCh

	if err != nil {
		return nil, &apperrors.GenerationError{Stage: "narrative", Cause: err}
	}

	if images.err != nil {
		g.logger.Warn("standalone image generation failed",
			zap.Error(images.err))
	}

	return g.finish(narrative, images.urls, "", images.err)
}

// attemptWithImage runs the image-aware path: vision narrative, best-effort
// photo analysis, then the ordered image strategies.
func (g *DesignGenerator) attemptWithImage(ctx context.Context, params *models.DesignParams, originalImageURL, brief string) (*models.GenerationResult, error) {
	narrative, err := retry.DoWithResult(ctx, g.retryCfg, func() (string, error) {
		return g.client.VisionCompletion(ctx, brief, prompts.DesignSystemMessage, originalImageURL)
	})
	if err != nil {
		return nil, &apperrors.GenerationError{Stage: "narrative", Cause: err}
	}

	// Best-effort photo analysis. A failure here never aborts the pipeline.
	analysis, analysisErr := g.client.VisionCompletion(ctx,
		prompts.BuildImageAnalysisPrompt(), prompts.AnalysisSystemMessage, originalImageURL)
	if analysisErr != nil {
		g.logger.Warn("image analysis failed, continuing without it",
			zap.Error(analysisErr))
		analysis = ""
	}

	strategies := []imageStrategy{
		{
			name: "vision-edit",
			run: func(ctx context.Context) ([]string, error) {
				return g.editViaVision(ctx, params, originalImageURL, narrative)
			},
		},
		{
			name: "standalone-generation",
			run: func(ctx context.Context) ([]string, error) {
				return g.generateStandalone(ctx, params, analysis)
			},
		},
	}

	urls, imagesErr := g.runStrategies(ctx, strategies)
	return g.finish(narrative, urls, analysis, imagesErr)
}

// runStrategies tries each image strategy in order and returns the first
// non-empty result. The last error is returned only if every strategy fails.
func (g *DesignGenerator) runStrategies(ctx context.Context, strategies []imageStrategy) ([]string, error) {
	var lastErr error
	for _, s := range strategies {
		urls, err := s.run(ctx)
		if err != nil {
			g.logger.Warn("image strategy failed",
				zap.String("strategy", s.name),
				zap.Error(err))
			lastErr = err
			continue
		}
		if len(urls) > 0 {
			g.logger.Info("image strategy succeeded",
				zap.String("strategy", s.name),
				zap.Int("images", len(urls)))
			return urls, nil
		}
		lastErr = fmt.Errorf("strategy %s produced no images", s.name)
	}
	return nil, lastErr
}

// editViaVision asks the image-capable model for a constrained edit of the
// original photo and extracts any image URLs embedded in its reply.
func (g *DesignGenerator) editViaVision(ctx context.Context, params *models.DesignParams, originalImageURL, narrative string) ([]string, error) {
	reply, err := g.client.VisionCompletion(ctx,
		prompts.BuildImageEditPrompt(params, narrative), prompts.DesignSystemMessage, originalImageURL)
	if err != nil {
		return nil, err
	}
	return ExtractImageURLs(reply), nil
}

// generateStandalone issues a text-to-image request.
func (g *DesignGenerator) generateStandalone(ctx context.Context, params *models.DesignParams, analysis string) ([]string, error) {
	prompt := prompts.BuildImageGenerationPrompt(params, analysis)
	return retry.DoWithResult(ctx, g.retryCfg, func() ([]string, error) {
		return g.client.GenerateImages(ctx, prompt, g.imageCount)
	})
}

// finish assembles the result, enforcing that a pass with neither narrative
// nor images fails rather than completing empty-handed.
func (g *DesignGenerator) finish(narrative string, urls []string, analysis string, imagesErr error) (*models.GenerationResult, error) {
	if strings.TrimSpace(narrative) == "" && len(urls) == 0 {
		if imagesErr == nil {
			imagesErr = fmt.Errorf("empty narrative and no images generated")
		}
		return nil, &apperrors.GenerationError{Stage: "image", Cause: imagesErr}
	}

	return &models.GenerationResult{
		DesignThesis:    narrative,
		GeneratedImages: urls,
		ImageAnalysis:   analysis,
	}, nil
}

// ExtractImageURLs pulls image links out of free text.
func ExtractImageURLs(text string) []string {
	return inlineImageURL.FindAllString(text, -1)
}
