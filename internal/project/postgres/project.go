package postgres

import (
	"context"

	projectDatamodel "github.com/frahmantamala/expensehub/internal/core/datamodel/project"
	"github.com/frahmantamala/expensehub/internal/project"
	"github.com/frahmantamala/expensehub/internal/tenant"
)

type ProjectRepository struct {
	client *tenant.Client
}

func NewProjectRepository(client *tenant.Client) project.RepositoryAPI {
	return &ProjectRepository{client: client}
}

func (r *ProjectRepository) List(ctx context.Context, scope tenant.Scope, activeOnly bool) ([]projectDatamodel.Project, error) {
	var rows []projectDatamodel.Project
	projects := r.client.For(scope).Projects()
	if activeOnly {
		return rows, projects.Find(ctx, &rows, "is_active = ?", true)
	}
	return rows, projects.Find(ctx, &rows)
}

func (r *ProjectRepository) GetByID(ctx context.Context, scope tenant.Scope, id int64) (*projectDatamodel.Project, error) {
	var row projectDatamodel.Project
	if err := r.client.For(scope).Projects().First(ctx, &row, "id = ?", id); err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *ProjectRepository) NameTaken(ctx context.Context, scope tenant.Scope, name string, excludeID int64) (bool, error) {
	return r.client.For(scope).Projects().Exists(ctx, "LOWER(name) = LOWER(?) AND id <> ?", name, excludeID)
}

func (r *ProjectRepository) Create(ctx context.Context, scope tenant.Scope, p *projectDatamodel.Project) error {
	return r.client.For(scope).Projects().Create(ctx, p)
}

func (r *ProjectRepository) Update(ctx context.Context, scope tenant.Scope, id int64, values map[string]any) error {
	n, err := r.client.For(scope).Projects().Updates(ctx, values, "id = ?", id)
	if err != nil {
		return err
	}
	if n == 0 {
		return tenant.ErrNotFound
	}
	return nil
}

func (r *ProjectRepository) HasExpenses(ctx context.Context, scope tenant.Scope, id int64) (bool, error) {
	return r.client.For(scope).Expenses().Exists(ctx, "project_id = ?", id)
}

func (r *ProjectRepository) Delete(ctx context.Context, scope tenant.Scope, id int64) error {
	n, err := r.client.For(scope).Projects().Delete(ctx, "id = ?", id)
	if err != nil {
		return err
	}
	if n == 0 {
		return tenant.ErrNotFound
	}
	return nil
}
