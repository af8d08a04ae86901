package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/frahmantamala/expensehub/internal/report"
	"github.com/jmoiron/sqlx"
)

type ReportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) report.RepositoryAPI {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) ProjectTotals(ctx context.Context, companyID int64, filter report.Filter) ([]report.Row, error) {
	var (
		where = []string{"p.company_id = ?"}
		args  = []any{companyID}
	)
	if filter.Status != "" {
		where = append(where, "e.status = ?")
		args = append(args, filter.Status)
	}
	if filter.From != nil {
		where = append(where, "e.expense_date >= ?")
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		where = append(where, "e.expense_date <= ?")
		args = append(args, *filter.To)
	}

	query := `SELECT p.id AS project_id, p.name AS project_name, e.status, e.currency,
		COUNT(e.id) AS count, COALESCE(SUM(e.amount), 0) AS total
		FROM expenses e
		JOIN projects p ON p.id = e.project_id
		WHERE ` + strings.Join(where, " AND ") + `
		GROUP BY p.id, p.name, e.status, e.currency
		ORDER BY p.name, e.status, e.currency`

	var rows []report.Row
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ReportRepository) BaseCurrency(ctx context.Context, companyID int64) (string, error) {
	var base string
	err := r.db.GetContext(ctx, &base, r.db.Rebind("SELECT base_currency FROM companies WHERE id = ?"), companyID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", report.ErrCompanyNotFound
	}
	return base, err
}
