package entity

import "github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/model"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageRequest is the ?page=&limit= pair of a list endpoint
type PageRequest struct {
	Page  int `query:"page"`
	Limit int `query:"limit"`
}

// Normalize clamps the request to a valid page. Page starts at 1.
func (r PageRequest) Normalize() PageRequest {
	if r.Page < 1 {
		r.Page = 1
	}
	switch {
	case r.Limit < 1:
		r.Limit = DefaultPageSize
	case r.Limit > MaxPageSize:
		r.Limit = MaxPageSize
	}
	return r
}

// Offset is the row offset of a normalized request
func (r PageRequest) Offset() int {
	return (r.Page - 1) * r.Limit
}

type PageMeta struct {
	Page       int   `json:"current_page"`
	Limit      int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

func NewPageMeta(r PageRequest, total int64) PageMeta {
	r = r.Normalize()
	pages := int((total + int64(r.Limit) - 1) / int64(r.Limit))
	return PageMeta{
		Page:       r.Page,
		Limit:      r.Limit,
		Total:      total,
		TotalPages: pages,
		HasNext:    r.Page < pages,
	}
}

// TransactionPage is one page of the caller's ledger entries, newest first
type TransactionPage struct {
	Data       []*model.Transaction `json:"data"`
	Pagination PageMeta             `json:"pagination"`
}
