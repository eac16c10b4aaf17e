package pagination

import (
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/validator"
)

const (
	DefaultLimit = 50
	MaxLimit     = 100
)

// Params is the skip/limit window of a list request.
type Params struct {
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
}

// Validate applies the default limit when unset and rejects out-of-range values.
func (p *Params) Validate() validator.ValidationErrors {
	var errs validator.ValidationErrors
	if p.Limit == 0 {
		p.Limit = DefaultLimit
	}
	if p.Skip < 0 {
		errs = errs.Add("skip", "skip must be greater than or equal to 0")
	}
	if p.Limit < 1 || p.Limit > MaxLimit {
		errs = errs.Add("limit", "limit must be between 1 and 100")
	}
	return errs
}

// Page is one window of a list result.
type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Skip  int   `json:"skip"`
	Limit int   `json:"limit"`
}

func NewPage[T any](items []T, total int64, p Params) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Total: total, Skip: p.Skip, Limit: p.Limit}
}

// Map converts the items of a page, keeping the window.
func Map[T, R any](p Page[T], fn func(T) R) Page[R] {
	out := make([]R, len(p.Items))
	for i, item := range p.Items {
		out[i] = fn(item)
	}
	return Page[R]{Items: out, Total: p.Total, Skip: p.Skip, Limit: p.Limit}
}
