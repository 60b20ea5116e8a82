package query

import (
	"explorer/internal/domain"
	"explorer/internal/standardize"
)

// Run executes filter → sort → paginate. Total counts the filtered rows
// before pagination.
func Run(rows []domain.StandardizedRow, f Filters) domain.PaginatedResult {
	filtered := Filter(rows, f.Where)
	sorted := Sort(filtered, f.OrderBy)
	page := Paginate(sorted, f.Page, f.Size)
	if page == nil {
		page = []domain.StandardizedRow{}
	}
	return domain.PaginatedResult{
		Data:  page,
		Page:  f.Page,
		Size:  f.Size,
		Total: len(filtered),
	}
}

// Execute validates body against fields, standardizes raw and runs the
// pipeline. Validation failures are *domain.ValidationError.
func Execute(raw []domain.RawRow, fields []domain.Field, body []byte) (domain.PaginatedResult, error) {
	f, err := Parse(body, fields)
	if err != nil {
		return domain.PaginatedResult{}, err
	}
	return Run(standardize.Rows(raw, fields), f), nil
}
