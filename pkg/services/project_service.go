// Package services contains the project-creation pipeline:
// orchestration, generative design, cost estimation, asset re-hosting
// and report rendering.
package services

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yardsketch/yardsketch-engine/pkg/apperrors"
	"github.com/yardsketch/yardsketch-engine/pkg/models"
	"github.com/yardsketch/yardsketch-engine/pkg/repositories"
	"github.com/yardsketch/yardsketch-engine/pkg/storage"
)

// UploadedImage carries a multipart image upload through the pipeline.
type UploadedImage struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ProjectService is the top-level use case surface for projects.
type ProjectService interface {
	// CreateProject runs the full creation pipeline: validate, upload the
	// original image, persist a draft, generate the proposal, estimate
	// materials, re-host renderings, and finalize the record.
	CreateProject(ctx context.Context, ownerID string, params *models.DesignParams, image *UploadedImage) (*models.Project, error)

	// GetProject returns a single project, enforcing ownership.
	GetProject(ctx context.Context, ownerID string, id uuid.UUID) (*models.Project, error)

	// ListProjects returns the owner's projects, newest first.
	// limit <= 0 returns all.
	ListProjects(ctx context.Context, ownerID string, limit int) ([]*models.Project, error)
}

// Generator abstracts the generative design client for testing.
type Generator interface {
	Generate(ctx context.Context, params *models.DesignParams, originalImageURL string) (*models.GenerationResult, error)
}

// Persister abstracts the asset persister for testing.
type Persister interface {
	Persist(ctx context.Context, urls []string, ownerID, projectID string) []string
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// projectService implements ProjectService.
type projectService struct {
	repo      repositories.ProjectRepository
	store     storage.ObjectStore
	generator Generator
	estimator *MaterialEstimator
	persister Persister
	logger    *zap.Logger
}

// NewProjectService wires the project pipeline from its collaborators.
func NewProjectService(
	repo repositories.ProjectRepository,
	store storage.ObjectStore,
	generator Generator,
	estimator *MaterialEstimator,
	persister Persister,
	logger *zap.Logger,
) ProjectService {
	return &projectService{
		repo:      repo,
		store:     store,
		generator: generator,
		estimator: estimator,
		persister: persister,
		logger:    logger.Named("projects"),
	}
}

// CreateProject implements the creation pipeline.
//
// Failure policy: validation and upload failures leave no record behind.
// Once the draft exists, a generation failure propagates but the draft
// stays visible to its owner for inspection or retry. The finalization
// update in step 7 is the only place derived fields are ever written.
func (s *projectService) CreateProject(ctx context.Context, ownerID string, params *models.DesignParams, image *UploadedImage) (*models.Project, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}

	// Step 2: upload the original photo before any database write, so a
	// draft always references durable inputs.
	var originalImageURL string
	if image != nil && len(image.Data) > 0 {
		url, err := s.uploadOriginal(ctx, ownerID, image)
		if err != nil {
			return nil, err
		}
		originalImageURL = url
	}

	// Step 3: provisional record.
	project := &models.Project{
		OwnerID:       ownerID,
		Name:          params.Name,
		Status:        models.StatusDraft,
		ClimateZone:   params.ClimateZone,
		SunExposure:   params.SunExposure,
		SquareFootage: params.SquareFootage,
		DesignStyle:   params.DesignStyle,
		Budget:        params.Budget,
		Description:   params.Notes,
		OriginalImage: originalImageURL,
	}
	if err := s.repo.Create(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("draft project created",
		zap.String("project_id", project.ID.String()),
		zap.String("owner_id", ownerID),
		zap.Bool("has_image", originalImageURL != ""))

	// Step 4: generative design. The draft survives a failure here.
	generation, err := s.generator.Generate(ctx, params, originalImageURL)
	if err != nil {
		s.logger.Error("design generation failed, project remains draft",
			zap.String("project_id", project.ID.String()),
			zap.Error(err))
		return nil, err
	}

	// Step 5: cost estimate (pure, cannot fail).
	materials, totalCost := s.estimator.Estimate(generation.DesignThesis)

	// Step 6: re-host transient renderings.
	durableImages := s.persister.Persist(ctx, generation.GeneratedImages, ownerID, project.ID.String())

	// Step 7: single finalization point.
	project.DesignThesis = generation.DesignThesis
	project.ImageAnalysis = generation.ImageAnalysis
	project.GeneratedImages = durableImages
	project.MaterialsList = materials
	project.TotalCost = totalCost
	if err := s.repo.Finalize(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("project completed",
		zap.String("project_id", project.ID.String()),
		zap.Int("generated_images", len(durableImages)),
		zap.Int("materials", len(materials)),
		zap.Float64("total_cost", totalCost))

	return project, nil
}

// GetProject returns the project if it exists and belongs to ownerID.
func (s *projectService) GetProject(ctx context.Context, ownerID string, id uuid.UUID) (*models.Project, error) {
	project, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if project.OwnerID != ownerID {
		return nil, apperrors.ErrForbidden
	}
	return project, nil
}

// ListProjects returns the owner's projects, newest first.
func (s *projectService) ListProjects(ctx context.Context, ownerID string, limit int) ([]*models.Project, error) {
	return s.repo.ListByOwner(ctx, ownerID, limit)
}

func (s *projectService) uploadOriginal(ctx context.Context, ownerID string, image *UploadedImage) (string, error) {
	name := unsafeFilenameChars.ReplaceAllString(image.Filename, "_")
	if name == "" {
		name = "original"
	}
	key := fmt.Sprintf("projects/%s/%d_%s", ownerID, time.Now().UnixMilli(), name)

	contentType := image.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}

	url, err := s.store.Upload(ctx, key, contentType, image.Data)
	if err != nil {
		return "", err
	}
	return url, nil
}

func validateParams(params *models.DesignParams) error {
	if params == nil {
		return apperrors.NewValidationError("", "request body is required")
	}
	if params.Name == "" {
		return apperrors.NewValidationError("name", "is required")
	}
	if params.ClimateZone == "" {
		return apperrors.NewValidationError("climateZone", "is required")
	}
	if params.SquareFootage <= 0 {
		return apperrors.NewValidationError("squareFootage", "must be a positive integer")
	}
	if params.SunExposure != "" && !slices.Contains(models.SunExposures, params.SunExposure) {
		return apperrors.NewValidationError("sunExposure", "must be one of full-sun, partial-sun, shade")
	}
	if params.DesignStyle != "" && !slices.Contains(models.DesignStyles, params.DesignStyle) {
		return apperrors.NewValidationError("designStyle", "is not a recognized style")
	}
	if params.Budget < 0 {
		return apperrors.NewValidationError("budget", "must not be negative")
	}
	return nil
}
