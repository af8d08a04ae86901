package report

import (
	"sort"
	"time"

	"github.com/frahmantamala/expensehub/internal/exchangerate"
)

// Line is one status/currency bucket of a project.
type Line struct {
	Status   string `json:"status" db:"status"`
	Currency string `json:"currency" db:"currency"`
	Count    int64  `json:"count" db:"count"`
	Total    int64  `json:"total" db:"total"`
}

// Row is what the repository returns: one Line tagged with its project.
type Row struct {
	ProjectID   int64  `db:"project_id"`
	ProjectName string `db:"project_name"`
	Line
}

type ProjectSummary struct {
	ProjectID   int64  `json:"projectId"`
	ProjectName string `json:"projectName"`
	Count       int64  `json:"count"`
	Lines       []Line `json:"lines"`
	// BaseTotal is set only when every line could be converted.
	BaseTotal *int64 `json:"baseTotal,omitempty"`
}

type Summary struct {
	BaseCurrency    string            `json:"baseCurrency"`
	RatesCapturedAt *time.Time        `json:"ratesCapturedAt,omitempty"`
	MissingRates    []string          `json:"missingRates,omitempty"`
	Projects        []*ProjectSummary `json:"projects"`
	BaseTotal       *int64            `json:"baseTotal,omitempty"`
}

type Filter struct {
	Status string
	From   *time.Time
	To     *time.Time
}

// build groups rows by project in the order they arrive and converts
// totals with snap when it is non-nil.
func build(base string, rows []Row, snap *exchangerate.Snapshot) *Summary {
	s := &Summary{BaseCurrency: base, Projects: []*ProjectSummary{}}
	if snap != nil {
		at := snap.CapturedAt
		s.RatesCapturedAt = &at
	}

	missing := map[string]bool{}
	var grand int64
	grandOK := snap != nil
	index := map[int64]*ProjectSummary{}
	projectOK := map[int64]bool{}

	for _, row := range rows {
		p, ok := index[row.ProjectID]
		if !ok {
			p = &ProjectSummary{ProjectID: row.ProjectID, ProjectName: row.ProjectName, BaseTotal: new(int64)}
			index[row.ProjectID] = p
			projectOK[row.ProjectID] = snap != nil
			s.Projects = append(s.Projects, p)
		}
		p.Count += row.Count
		p.Lines = append(p.Lines, row.Line)

		if snap == nil {
			continue
		}
		converted, err := snap.Convert(row.Total, row.Currency, base)
		if err != nil {
			missing[row.Currency] = true
			projectOK[row.ProjectID] = false
			grandOK = false
			continue
		}
		*p.BaseTotal += converted
		grand += converted
	}

	for _, p := range s.Projects {
		if !projectOK[p.ProjectID] {
			p.BaseTotal = nil
		}
	}
	if grandOK {
		s.BaseTotal = &grand
	}
	for cur := range missing {
		s.MissingRates = append(s.MissingRates, cur)
	}
	sort.Strings(s.MissingRates)
	return s
}
