// Package repositories provides data access for yardsketch-engine.
package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yardsketch/yardsketch-engine/pkg/apperrors"
	"github.com/yardsketch/yardsketch-engine/pkg/database"
	"github.com/yardsketch/yardsketch-engine/pkg/models"
)

// ProjectRepository defines the interface for project data access.
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	Get(ctx context.Context, id uuid.UUID) (*models.Project, error)
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]*models.Project, error)
	// Finalize applies the single completion update: status, derived fields
	// and updatedAt, in one statement.
	Finalize(ctx context.Context, project *models.Project) error
}

// projectRepository implements ProjectRepository using PostgreSQL.
type projectRepository struct {
	db *database.DB
}

// NewProjectRepository creates a new project repository.
func NewProjectRepository(db *database.DB) ProjectRepository {
	return &projectRepository{db: db}
}

const projectColumns = `id, owner_id, name, status, climate_zone, sun_exposure, square_footage,
	design_style, budget, description, original_image, generated_images, design_thesis,
	image_analysis, materials_list, total_cost, created_at, updated_at`

// Create inserts a new draft project with server-assigned id and timestamps.
func (r *projectRepository) Create(ctx context.Context, project *models.Project) error {
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}

	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now
	if project.Status == "" {
		project.Status = models.StatusDraft
	}

	images, materials, err := marshalDerived(project)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO projects (` + projectColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	_, err = r.db.Exec(ctx, query,
		project.ID,
		project.OwnerID,
		project.Name,
		project.Status,
		project.ClimateZone,
		project.SunExposure,
		project.SquareFootage,
		project.DesignStyle,
		project.Budget,
		project.Description,
		project.OriginalImage,
		images,
		project.DesignThesis,
		project.ImageAnalysis,
		materials,
		project.TotalCost,
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	return nil
}

// Get retrieves a project by ID.
func (r *projectRepository) Get(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`

	project, err := scanProject(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return project, nil
}

// ListByOwner returns the owner's projects, newest first. limit <= 0 means
// no limit.
func (r *projectRepository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE owner_id = $1 ORDER BY created_at DESC`
	args := []any{ownerID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}

	return projects, nil
}

// Finalize writes the completion update for a project. The WHERE clause
// guards the draft→completed transition so a project is never finalized twice.
func (r *projectRepository) Finalize(ctx context.Context, project *models.Project) error {
	project.Status = models.StatusCompleted
	project.UpdatedAt = time.Now()

	images, materials, err := marshalDerived(project)
	if err != nil {
		return err
	}

	query := `
		UPDATE projects
		SET status = $2,
		    generated_images = $3,
		    design_thesis = $4,
		    image_analysis = $5,
		    materials_list = $6,
		    total_cost = $7,
		    updated_at = $8
		WHERE id = $1 AND status = $9`

	tag, err := r.db.Exec(ctx, query,
		project.ID,
		project.Status,
		images,
		project.DesignThesis,
		project.ImageAnalysis,
		materials,
		project.TotalCost,
		project.UpdatedAt,
		models.StatusDraft,
	)
	if err != nil {
		return fmt.Errorf("failed to finalize project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("project %s is not in draft status: %w", project.ID, apperrors.ErrNotFound)
	}

	return nil
}

// rowScanner covers pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*models.Project, error) {
	var project models.Project
	var images, materials []byte

	err := row.Scan(
		&project.ID,
		&project.OwnerID,
		&project.Name,
		&project.Status,
		&project.ClimateZone,
		&project.SunExposure,
		&project.SquareFootage,
		&project.DesignStyle,
		&project.Budget,
		&project.Description,
		&project.OriginalImage,
		&images,
		&project.DesignThesis,
		&project.ImageAnalysis,
		&materials,
		&project.TotalCost,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(images, &project.GeneratedImages); err != nil {
		return nil, fmt.Errorf("failed to unmarshal generated images: %w", err)
	}
	if err := json.Unmarshal(materials, &project.MaterialsList); err != nil {
		return nil, fmt.Errorf("failed to unmarshal materials list: %w", err)
	}

	return &project, nil
}

func marshalDerived(project *models.Project) (images, materials []byte, err error) {
	generatedImages := project.GeneratedImages
	if generatedImages == nil {
		generatedImages = []string{}
	}
	images, err = json.Marshal(generatedImages)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal generated images: %w", err)
	}

	materialsList := project.MaterialsList
	if materialsList == nil {
		materialsList = []models.Material{}
	}
	materials, err = json.Marshal(materialsList)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal materials list: %w", err)
	}

	return images, materials, nil
}
