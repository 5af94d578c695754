package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yardsketch/yardsketch-engine/pkg/apperrors"
	"github.com/yardsketch/yardsketch-engine/pkg/auth"
	"github.com/yardsketch/yardsketch-engine/pkg/models"
	"github.com/yardsketch/yardsketch-engine/pkg/services"
)

// maxUploadBytes caps the multipart form size for project creation. Property
// photos come straight off phone cameras, so allow a generous limit.
const maxUploadBytes = 25 << 20

// ProjectsHandler handles project-related HTTP requests.
type ProjectsHandler struct {
	projectService services.ProjectService
	renderer       *services.ReportRenderer
	logger         *zap.Logger
}

// NewProjectsHandler creates a new projects handler.
func NewProjectsHandler(projectService services.ProjectService, renderer *services.ReportRenderer, logger *zap.Logger) *ProjectsHandler {
	return &ProjectsHandler{
		projectService: projectService,
		renderer:       renderer,
		logger:         logger,
	}
}

// RegisterRoutes registers the projects handler's routes on the given mux.
func (h *ProjectsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/projects", authMiddleware.RequireAuth(h.Create))
	mux.HandleFunc("GET /api/projects", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("GET /api/projects/{id}", authMiddleware.RequireAuth(h.Get))
	mux.HandleFunc("GET /api/projects/{id}/pdf", authMiddleware.RequireAuth(h.DownloadReport))
}

// Create handles POST /api/projects
// Accepts a multipart form with a "data" field holding the design parameters
// as JSON and an optional "image" file with the property photo. Runs the full
// design pipeline and returns the finalized project.
func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, err := auth.RequireOwnerIDFromContext(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Expected multipart form data"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	var params models.DesignParams
	if err := json.Unmarshal([]byte(r.FormValue("data")), &params); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Field 'data' must be valid JSON"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	image, err := h.readImageFile(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	project, err := h.projectService.CreateProject(r.Context(), ownerID, &params, image)
	if err != nil {
		h.logger.Error("Failed to create project",
			zap.String("owner_id", ownerID),
			zap.Error(err))
		h.writeError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, project); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// List handles GET /api/projects
// Returns the caller's projects, newest first. An optional "limit" query
// parameter bounds the result count.
func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, err := auth.RequireOwnerIDFromContext(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Query parameter 'limit' must be a non-negative integer"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
	}

	projects, err := h.projectService.ListProjects(r.Context(), ownerID, limit)
	if err != nil {
		h.logger.Error("Failed to list projects",
			zap.String("owner_id", ownerID),
			zap.Error(err))
		h.writeError(w, err)
		return
	}

	if projects == nil {
		projects = []*models.Project{}
	}
	if err := WriteJSON(w, http.StatusOK, map[string]any{"projects": projects}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/projects/{id}
func (h *ProjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	project, err := h.loadProject(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, project); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// DownloadReport handles GET /api/projects/{id}/pdf
// Renders the project as a PDF and returns it as an attachment.
func (h *ProjectsHandler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	project, err := h.loadProject(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	pdfBytes, err := h.renderer.Render(r.Context(), project)
	if err != nil {
		h.logger.Error("Failed to render project report",
			zap.String("project_id", project.ID.String()),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "report_failed", "Failed to render project report"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", services.ReportFilename(project.Name)))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdfBytes)))
	if _, err := w.Write(pdfBytes); err != nil {
		h.logger.Error("Failed to write report response", zap.Error(err))
	}
}

// loadProject resolves the caller and the project named by the path,
// enforcing ownership.
func (h *ProjectsHandler) loadProject(r *http.Request) (*models.Project, error) {
	ownerID, err := auth.RequireOwnerIDFromContext(r.Context())
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return nil, apperrors.ErrNotFound
	}

	return h.projectService.GetProject(r.Context(), ownerID, id)
}

// readImageFile extracts the optional "image" part of the upload form.
// Returns nil when no file was sent.
func (h *ProjectsHandler) readImageFile(r *http.Request) (*services.UploadedImage, error) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, &apperrors.ValidationError{Field: "image", Message: "could not read image upload"}
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		return nil, &apperrors.ValidationError{Field: "image", Message: "could not read image upload"}
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	return &services.UploadedImage{
		Filename:    header.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}

// writeError maps service errors onto HTTP responses.
func (h *ProjectsHandler) writeError(w http.ResponseWriter, err error) {
	var (
		status  int
		code    string
		message string
	)

	var validationErr *apperrors.ValidationError
	switch {
	case errors.As(err, &validationErr):
		status, code, message = http.StatusBadRequest, "validation_failed", validationErr.Error()
	case errors.Is(err, apperrors.ErrUnauthorized):
		status, code, message = http.StatusUnauthorized, "unauthorized", "Missing authentication"
	case errors.Is(err, apperrors.ErrForbidden):
		status, code, message = http.StatusForbidden, "forbidden", "You do not have access to this project"
	case errors.Is(err, apperrors.ErrNotFound):
		status, code, message = http.StatusNotFound, "not_found", "Project not found"
	case apperrors.IsStorage(err):
		status, code, message = http.StatusInternalServerError, "storage_failed", "Failed to store project assets"
	case apperrors.IsGeneration(err):
		status, code, message = http.StatusInternalServerError, "generation_failed", "Failed to generate the design"
	case apperrors.IsConfiguration(err):
		status, code, message = http.StatusInternalServerError, "misconfigured", "Service is misconfigured"
	default:
		status, code, message = http.StatusInternalServerError, "internal_error", "Internal server error"
	}

	if err := ErrorResponse(w, status, code, message); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
