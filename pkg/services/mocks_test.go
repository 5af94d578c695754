package services_test

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/yardsketch/yardsketch-engine/pkg/apperrors"
	"github.com/yardsketch/yardsketch-engine/pkg/models"
)

// mockProjectRepository is an in-memory ProjectRepository for service tests.
type mockProjectRepository struct {
	mu       sync.Mutex
	projects map[uuid.UUID]*models.Project

	CreateCalls   int
	FinalizeCalls int

	CreateErr   error
	FinalizeErr error
}

func newMockProjectRepository() *mockProjectRepository {
	return &mockProjectRepository{projects: make(map[uuid.UUID]*models.Project)}
}

func (m *mockProjectRepository) Create(ctx context.Context, project *models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++
	if m.CreateErr != nil {
		return m.CreateErr
	}
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	if project.Status == "" {
		project.Status = models.StatusDraft
	}
	stored := *project
	m.projects[project.ID] = &stored
	return nil
}

func (m *mockProjectRepository) Get(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	project, ok := m.projects[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *project
	return &copied, nil
}

func (m *mockProjectRepository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Project
	for _, project := range m.projects {
		if project.OwnerID == ownerID {
			copied := *project
			out = append(out, &copied)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockProjectRepository) Finalize(ctx context.Context, project *models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FinalizeCalls++
	if m.FinalizeErr != nil {
		return m.FinalizeErr
	}
	stored, ok := m.projects[project.ID]
	if !ok || stored.Status != models.StatusDraft {
		return apperrors.ErrNotFound
	}
	project.Status = models.StatusCompleted
	updated := *project
	m.projects[project.ID] = &updated
	return nil
}

// mockGenerator is a configurable Generator.
type mockGenerator struct {
	GenerateFunc  func(ctx context.Context, params *models.DesignParams, originalImageURL string) (*models.GenerationResult, error)
	GenerateCalls int
}

func (m *mockGenerator) Generate(ctx context.Context, params *models.DesignParams, originalImageURL string) (*models.GenerationResult, error) {
	m.GenerateCalls++
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, params, originalImageURL)
	}
	return &models.GenerationResult{DesignThesis: "A quiet garden."}, nil
}

// mockPersister is a configurable Persister. The default passes URLs through.
type mockPersister struct {
	PersistFunc  func(ctx context.Context, urls []string, ownerID, projectID string) []string
	PersistCalls int
}

func (m *mockPersister) Persist(ctx context.Context, urls []string, ownerID, projectID string) []string {
	m.PersistCalls++
	if m.PersistFunc != nil {
		return m.PersistFunc(ctx, urls, ownerID, projectID)
	}
	return urls
}
