package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yardsketch/yardsketch-engine/pkg/apperrors"
	"github.com/yardsketch/yardsketch-engine/pkg/models"
	"github.com/yardsketch/yardsketch-engine/pkg/services"
	"github.com/yardsketch/yardsketch-engine/pkg/storage"
)

func newTestService(repo *mockProjectRepository, store *storage.MockObjectStore, generator *mockGenerator, persister *mockPersister) services.ProjectService {
	return services.NewProjectService(
		repo, store, generator, services.NewMaterialEstimator(), persister, zap.NewNop())
}

func validUpload() *services.UploadedImage {
	return &services.UploadedImage{
		Filename:    "back yard.jpg",
		ContentType: "image/jpeg",
		Data:        []byte("jpeg-bytes"),
	}
}

func TestCreateProject_FullPipeline(t *testing.T) {
	repo := newMockProjectRepository()
	store := &storage.MockObjectStore{}
	generator := &mockGenerator{
		GenerateFunc: func(ctx context.Context, params *models.DesignParams, originalImageURL string) (*models.GenerationResult, error) {
			assert.NotEmpty(t, originalImageURL)
			return &models.GenerationResult{
				DesignThesis:    "Mulch the beds and edge with decorative stone.",
				GeneratedImages: []string{"https://ai.example/r1.png"},
				ImageAnalysis:   "Sloped lawn, mature oak.",
			}, nil
		},
	}
	persister := &mockPersister{
		PersistFunc: func(ctx context.Context, urls []string, ownerID, projectID string) []string {
			return []string{"https://store.test/generated/r1.png"}
		},
	}
	svc := newTestService(repo, store, generator, persister)

	project, err := svc.CreateProject(context.Background(), "owner-1", &models.DesignParams{
		Name:          "Back Yard",
		ClimateZone:   "7a",
		SunExposure:   "partial-sun",
		SquareFootage: 800,
		DesignStyle:   "cottage",
		Budget:        5000,
	}, validUpload())

	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, project.Status)
	assert.Equal(t, "owner-1", project.OwnerID)
	assert.Equal(t, []string{"https://store.test/generated/r1.png"}, project.GeneratedImages)
	assert.Equal(t, "Sloped lawn, mature oak.", project.ImageAnalysis)

	// Mulch (3) + Decorative Stones (150) from the narrative.
	require.Len(t, project.MaterialsList, 2)
	assert.Equal(t, 153.0, project.TotalCost)

	assert.Equal(t, 1, repo.CreateCalls)
	assert.Equal(t, 1, repo.FinalizeCalls)
	require.Len(t, store.UploadCalls, 1)
	assert.True(t, strings.HasPrefix(store.UploadCalls[0], "projects/owner-1/"))
	assert.True(t, strings.HasSuffix(store.UploadCalls[0], "back_yard.jpg"))
}

func TestCreateProject_ValidationFailsFast(t *testing.T) {
	repo := newMockProjectRepository()
	store := &storage.MockObjectStore{}
	svc := newTestService(repo, store, &mockGenerator{}, &mockPersister{})

	cases := []struct {
		name   string
		params *models.DesignParams
	}{
		{"missing name", &models.DesignParams{ClimateZone: "7a", SquareFootage: 100}},
		{"missing climate zone", &models.DesignParams{Name: "Yard", SquareFootage: 100}},
		{"zero square footage", &models.DesignParams{Name: "Yard", ClimateZone: "7a"}},
		{"unknown sun exposure", &models.DesignParams{Name: "Yard", ClimateZone: "7a", SquareFootage: 100, SunExposure: "twilight"}},
		{"unknown style", &models.DesignParams{Name: "Yard", ClimateZone: "7a", SquareFootage: 100, DesignStyle: "brutalist"}},
		{"negative budget", &models.DesignParams{Name: "Yard", ClimateZone: "7a", SquareFootage: 100, Budget: -1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateProject(context.Background(), "owner-1", tc.params, nil)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
		})
	}

	// Nothing was uploaded or written for any invalid request.
	assert.Equal(t, 0, repo.CreateCalls)
	assert.Empty(t, store.UploadCalls)
}

func TestCreateProject_UploadFailureLeavesNoRecord(t *testing.T) {
	repo := newMockProjectRepository()
	store := &storage.MockObjectStore{
		UploadFunc: func(ctx context.Context, key, contentType string, body []byte) (string, error) {
			return "", &apperrors.StorageError{Op: "upload", Key: key, Cause: errors.New("bucket gone")}
		},
	}
	svc := newTestService(repo, store, &mockGenerator{}, &mockPersister{})

	_, err := svc.CreateProject(context.Background(), "owner-1", &models.DesignParams{
		Name: "Yard", ClimateZone: "7a", SquareFootage: 100,
	}, validUpload())

	require.Error(t, err)
	assert.True(t, apperrors.IsStorage(err))
	assert.Equal(t, 0, repo.CreateCalls)
}

func TestCreateProject_GenerationFailureKeepsDraft(t *testing.T) {
	repo := newMockProjectRepository()
	generator := &mockGenerator{
		GenerateFunc: func(ctx context.Context, params *models.DesignParams, originalImageURL string) (*models.GenerationResult, error) {
			return nil, &apperrors.GenerationError{Stage: "narrative", Cause: errors.New("model exploded")}
		},
	}
	svc := newTestService(repo, &storage.MockObjectStore{}, generator, &mockPersister{})

	_, err := svc.CreateProject(context.Background(), "owner-1", &models.DesignParams{
		Name: "Yard", ClimateZone: "7a", SquareFootage: 100,
	}, nil)

	require.Error(t, err)
	assert.True(t, apperrors.IsGeneration(err))

	// The draft survives for inspection; it was never finalized.
	assert.Equal(t, 1, repo.CreateCalls)
	assert.Equal(t, 0, repo.FinalizeCalls)
	for _, project := range repo.projects {
		assert.Equal(t, models.StatusDraft, project.Status)
	}
}

func TestCreateProject_NoImageSkipsUpload(t *testing.T) {
	repo := newMockProjectRepository()
	store := &storage.MockObjectStore{}
	generator := &mockGenerator{
		GenerateFunc: func(ctx context.Context, params *models.DesignParams, originalImageURL string) (*models.GenerationResult, error) {
			assert.Empty(t, originalImageURL)
			return &models.GenerationResult{DesignThesis: "A pollinator meadow."}, nil
		},
	}
	svc := newTestService(repo, store, generator, &mockPersister{})

	project, err := svc.CreateProject(context.Background(), "owner-1", &models.DesignParams{
		Name: "Meadow", ClimateZone: "5b", SquareFootage: 1200,
	}, nil)

	require.NoError(t, err)
	assert.Empty(t, store.UploadCalls)
	assert.Empty(t, project.OriginalImage)
	// No keyword matches: the fallback planting bundle applies.
	assert.Equal(t, 556.0, project.TotalCost)
}

func TestGetProject_EnforcesOwnership(t *testing.T) {
	repo := newMockProjectRepository()
	project := &models.Project{OwnerID: "owner-1", Name: "Yard", Status: models.StatusCompleted}
	require.NoError(t, repo.Create(context.Background(), project))

	svc := newTestService(repo, &storage.MockObjectStore{}, &mockGenerator{}, &mockPersister{})

	got, err := svc.GetProject(context.Background(), "owner-1", project.ID)
	require.NoError(t, err)
	assert.Equal(t, project.ID, got.ID)

	_, err = svc.GetProject(context.Background(), "intruder", project.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = svc.GetProject(context.Background(), "owner-1", uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
