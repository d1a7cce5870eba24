package lead

import (
	"context"
	"fmt"

	domain "github.com/gattaran/lead-intake/internal/domain/lead"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

type ListLeadsInput struct {
	Query   string
	Source  string
	City    string
	Blocked *bool
	Limit   int
	Offset  int
}

type ListLeadsOutput struct {
	Leads []LeadOutput `json:"leads"`
}

type ListLeads interface {
	Execute(ctx context.Context, in ListLeadsInput) (ListLeadsOutput, error)
}

type leadLister interface {
	List(ctx context.Context, filter domain.ListFilter) ([]domain.Lead, error)
}

type listLeads struct {
	store leadLister
}

func NewListLeads(store leadLister) ListLeads {
	return &listLeads{store: store}
}

func (uc *listLeads) Execute(ctx context.Context, in ListLeadsInput) (ListLeadsOutput, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := in.Offset
	if offset < 0 {
		offset = 0
	}

	leads, err := uc.store.List(ctx, domain.ListFilter{
		Query:   in.Query,
		Source:  in.Source,
		City:    in.City,
		Blocked: in.Blocked,
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return ListLeadsOutput{}, fmt.Errorf("%w: %v", ErrListLeads, err)
	}

	out := ListLeadsOutput{Leads: make([]LeadOutput, 0, len(leads))}
	for _, l := range leads {
		out.Leads = append(out.Leads, leadToOutput(l))
	}
	return out, nil
}
