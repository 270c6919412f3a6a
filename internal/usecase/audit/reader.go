package audit

import (
	"context"
	"errors"

	"civic-backoffice/internal/domain/access"
	"civic-backoffice/internal/domain/actor"
	auditDomain "civic-backoffice/internal/domain/audit"
)

var ErrForbidden = errors.New("audit log is restricted to administrators")

// Reader serves the administrative audit trail.
type Reader struct{ repo auditDomain.Repository }

func NewReader(repo auditDomain.Repository) *Reader { return &Reader{repo: repo} }

type Page struct {
	Items    []auditDomain.Entry `json:"items"`
	Total    int64               `json:"total"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"page_size"`
}

func (r *Reader) List(ctx context.Context, who actor.Actor, f auditDomain.Filter) (*Page, error) {
	if !access.CanAdminister(who) {
		return nil, ErrForbidden
	}
	f = f.Normalize()
	items, total, err := r.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []auditDomain.Entry{}
	}
	return &Page{Items: items, Total: total, Page: f.Page, PageSize: f.PageSize}, nil
}
