package model

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageReq is a 1-based page request.
type PageReq struct {
	Page     int `query:"page"`
	PageSize int `query:"page_size"`
}

// Normalize clamps the request to sane bounds.
func (p PageReq) Normalize() PageReq {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

func (p PageReq) Offset() int { return (p.Page - 1) * p.PageSize }

// Page is the single list shape every list endpoint returns.
type Page[T any] struct {
	Results  []T   `json:"results"`
	Count    int64 `json:"count"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}

func NewPage[T any](results []T, count int64, req PageReq) Page[T] {
	if results == nil {
		results = []T{}
	}
	return Page[T]{Results: results, Count: count, Page: req.Page, PageSize: req.PageSize}
}
