package projects

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/keystone-billing/keystone/internal/billing/shared"
)

// Service handles project master data.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Create opens a new active project.
func (s *Service) Create(ctx context.Context, req CreateProjectRequest) (*Project, error) {
	id, err := s.repo.Create(ctx, Project{
		Name:        req.Name,
		Client:      req.Client,
		SiteAddress: req.SiteAddress,
		Status:      StatusActive,
	})
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Update edits project fields.
func (s *Service) Update(ctx context.Context, id int64, req UpdateProjectRequest) (*Project, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}

	updates := make(map[string]any)
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Client != nil {
		updates["client"] = *req.Client
	}
	if req.SiteAddress != nil {
		updates["site_address"] = *req.SiteAddress
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			return nil, fmt.Errorf("update project: %w", err)
		}
	}
	return s.repo.Get(ctx, id)
}

// Delete removes a project unless documents reference it.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	n, err := s.repo.DocumentCount(ctx, id)
	if err != nil {
		return fmt.Errorf("count project documents: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("%w: %d document(s) reference this project", shared.ErrReferentialIntegrity, n)
	}
	return s.repo.Delete(ctx, id)
}

// Get returns one project.
func (s *Service) Get(ctx context.Context, id int64) (*Project, error) {
	return s.repo.Get(ctx, id)
}

// List returns projects matching the filter plus the unpaged count.
func (s *Service) List(ctx context.Context, req ListProjectsRequest) ([]Project, int, error) {
	if req.Limit <= 0 {
		req.Limit = 50
	}
	return s.repo.List(ctx, req)
}
