package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yardsketch/yardsketch-engine/pkg/auth"
	"github.com/yardsketch/yardsketch-engine/pkg/models"
	"github.com/yardsketch/yardsketch-engine/pkg/services"
)

// mockProjectService is a configurable ProjectService for handler tests.
type mockProjectService struct {
	CreateProjectFunc func(ctx context.Context, ownerID string, params *models.DesignParams, image *services.UploadedImage) (*models.Project, error)
	GetProjectFunc    func(ctx context.Context, ownerID string, id uuid.UUID) (*models.Project, error)
	ListProjectsFunc  func(ctx context.Context, ownerID string, limit int) ([]*models.Project, error)

	CreateProjectCalls int
	GetProjectCalls    int
	ListProjectsCalls  int
}

func (m *mockProjectService) CreateProject(ctx context.Context, ownerID string, params *models.DesignParams, image *services.UploadedImage) (*models.Project, error) {
	m.CreateProjectCalls++
	if m.CreateProjectFunc != nil {
		return m.CreateProjectFunc(ctx, ownerID, params, image)
	}
	return &models.Project{ID: uuid.New(), OwnerID: ownerID, Status: models.StatusCompleted}, nil
}

func (m *mockProjectService) GetProject(ctx context.Context, ownerID string, id uuid.UUID) (*models.Project, error) {
	m.GetProjectCalls++
	if m.GetProjectFunc != nil {
		return m.GetProjectFunc(ctx, ownerID, id)
	}
	return &models.Project{ID: id, OwnerID: ownerID}, nil
}

func (m *mockProjectService) ListProjects(ctx context.Context, ownerID string, limit int) ([]*models.Project, error) {
	m.ListProjectsCalls++
	if m.ListProjectsFunc != nil {
		return m.ListProjectsFunc(ctx, ownerID, limit)
	}
	return nil, nil
}

var _ services.ProjectService = (*mockProjectService)(nil)

// authedRequest attaches owner claims the way the auth middleware would.
func authedRequest(r *http.Request, ownerID string) *http.Request {
	claims := &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: ownerID},
	}
	ctx := context.WithValue(r.Context(), auth.ClaimsKey, claims)
	return r.WithContext(ctx)
}

// doRequest routes the request through a mux so path values resolve.
func doRequest(mux *http.ServeMux, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, r)
	return rec
}
