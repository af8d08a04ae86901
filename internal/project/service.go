package project

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/expensehub/internal"
	"github.com/frahmantamala/expensehub/internal/audit"
	"github.com/frahmantamala/expensehub/internal/core/common/validation"
	projectDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/project"
	"github.com/frahmantamala/expensehub/internal/tenant"
	"gorm.io/gorm"
)

type RepositoryAPI interface {
	List(ctx context.Context, scope tenant.Scope, activeOnly bool) ([]projectDatamodel.Project, error)
	GetByID(ctx context.Context, scope tenant.Scope, id int64) (*projectDatamodel.Project, error)
	NameTaken(ctx context.Context, scope tenant.Scope, name string, excludeID int64) (bool, error)
	Create(ctx context.Context, scope tenant.Scope, p *projectDatamodel.Project) error
	Update(ctx context.Context, scope tenant.Scope, id int64, values map[string]any) error
	HasExpenses(ctx context.Context, scope tenant.Scope, id int64) (bool, error)
	Delete(ctx context.Context, scope tenant.Scope, id int64) error
}

type AuditRecorder interface {
	Record(ctx context.Context, scope tenant.Scope, e audit.Entry)
}

type Service struct {
	repo   RepositoryAPI
	audit  AuditRecorder
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, auditor AuditRecorder, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		audit:  auditor,
		logger: logger,
	}
}

func (s *Service) List(ctx context.Context, scope tenant.Scope, activeOnly bool) ([]*Project, error) {
	rows, err := s.repo.List(ctx, scope, activeOnly)
	if err != nil {
		s.logger.Error("failed to list projects", "company_id", scope.CompanyID, "error", err)
		return nil, internal.NewInternalError("failed to list projects", err)
	}

	projects := make([]*Project, 0, len(rows))
	for i := range rows {
		projects = append(projects, FromDataModel(&rows[i]))
	}
	return projects, nil
}

func (s *Service) Get(ctx context.Context, scope tenant.Scope, id int64) (*Project, error) {
	row, err := s.repo.GetByID(ctx, scope, id)
	if err != nil {
		return nil, s.mapError(err, "failed to get project")
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(ctx context.Context, scope tenant.Scope, dto CreateProjectDTO) (*Project, error) {
	dto.Normalize()
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	taken, err := s.repo.NameTaken(ctx, scope, dto.Name, 0)
	if err != nil {
		return nil, internal.NewInternalError("failed to check project name", err)
	}
	if taken {
		return nil, internal.ErrProjectNameTaken
	}

	row := ToDataModel(NewProject(dto.Name, dto.Description))
	if err := s.repo.Create(ctx, scope, row); err != nil {
		return nil, s.mapError(err, "failed to create project")
	}

	s.logger.Info("project created", "project_id", row.ID, "company_id", scope.CompanyID)
	s.audit.Record(ctx, scope, audit.Entry{
		Action:     audit.ActionProjectCreate,
		EntityType: audit.EntityProject,
		EntityID:   row.ID,
		Metadata:   map[string]any{"name": row.Name},
	})
	return FromDataModel(row), nil
}

func (s *Service) Update(ctx context.Context, scope tenant.Scope, id int64, dto UpdateProjectDTO) (*Project, error) {
	dto.Normalize()
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByID(ctx, scope, id); err != nil {
		return nil, s.mapError(err, "failed to get project")
	}

	if dto.Name != nil {
		taken, err := s.repo.NameTaken(ctx, scope, *dto.Name, id)
		if err != nil {
			return nil, internal.NewInternalError("failed to check project name", err)
		}
		if taken {
			return nil, internal.ErrProjectNameTaken
		}
	}

	values := dto.Values()
	if len(values) > 0 {
		if err := s.repo.Update(ctx, scope, id, values); err != nil {
			return nil, s.mapError(err, "failed to update project")
		}
		s.audit.Record(ctx, scope, audit.Entry{
			Action:     audit.ActionProjectUpdate,
			EntityType: audit.EntityProject,
			EntityID:   id,
			Metadata:   values,
		})
	}

	return s.Get(ctx, scope, id)
}

// Delete refuses while any expense still references the project.
func (s *Service) Delete(ctx context.Context, scope tenant.Scope, id int64) error {
	row, err := s.repo.GetByID(ctx, scope, id)
	if err != nil {
		return s.mapError(err, "failed to get project")
	}

	hasExpenses, err := s.repo.HasExpenses(ctx, scope, id)
	if err != nil {
		return internal.NewInternalError("failed to check project expenses", err)
	}
	if hasExpenses {
		return internal.ErrProjectHasExpenses
	}

	if err := s.repo.Delete(ctx, scope, id); err != nil {
		return s.mapError(err, "failed to delete project")
	}

	s.logger.Info("project deleted", "project_id", id, "company_id", scope.CompanyID)
	s.audit.Record(ctx, scope, audit.Entry{
		Action:     audit.ActionProjectDelete,
		EntityType: audit.EntityProject,
		EntityID:   id,
		Metadata:   map[string]any{"name": row.Name},
	})
	return nil
}

func (s *Service) mapError(err error, msg string) error {
	switch {
	case errors.Is(err, tenant.ErrNotFound):
		return internal.ErrProjectNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return internal.ErrProjectNameTaken
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return internal.ErrProjectHasExpenses
	}
	s.logger.Error(msg, "error", err)
	return internal.NewInternalError(msg, err)
}
