package lead

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/gattaran/lead-intake/internal/domain/lead"
)

type GetLeadByIDInput struct {
	ID int64
}

type LeadOutput struct {
	ID                      int64      `json:"id"`
	Source                  string     `json:"source"`
	City                    string     `json:"city"`
	TargetRegion            string     `json:"target_region"`
	LeadCreatedAt           *time.Time `json:"lead_created_at"`
	EstablishmentName       string     `json:"establishment_name"`
	RepresentativeName      string     `json:"representative_name"`
	ContractStatus          string     `json:"contract_status"`
	Business99Status        string     `json:"business_99_status"`
	RepresentativePhone     string     `json:"representative_phone"`
	RepresentativePhoneNorm string     `json:"representative_phone_norm"`
	IsBlockedNumber         bool       `json:"is_blocked_number"`
	CompanyCategory         string     `json:"company_category"`
	Address                 string     `json:"address"`
	UniqueKey               string     `json:"unique_key"`
	FirstSeenAt             time.Time  `json:"first_seen_at"`
	LastSeenAt              time.Time  `json:"last_seen_at"`
}

type GetLeadByID interface {
	Execute(ctx context.Context, in GetLeadByIDInput) (LeadOutput, error)
}

type leadGetter interface {
	GetByID(ctx context.Context, id int64) (*domain.Lead, error)
}

type getLeadByID struct {
	store leadGetter
}

func NewGetLeadByID(store leadGetter) GetLeadByID {
	return &getLeadByID{store: store}
}

func (uc *getLeadByID) Execute(ctx context.Context, in GetLeadByIDInput) (LeadOutput, error) {
	if in.ID <= 0 {
		return LeadOutput{}, ErrInvalidLeadID
	}

	found, err := uc.store.GetByID(ctx, in.ID)
	if err != nil {
		if errors.Is(err, domain.ErrLeadNotFound) {
			return LeadOutput{}, ErrLeadNotFound
		}
		return LeadOutput{}, fmt.Errorf("%w: %v", ErrGetLead, err)
	}

	return leadToOutput(*found), nil
}

func leadToOutput(l domain.Lead) LeadOutput {
	return LeadOutput{
		ID:                      l.ID,
		Source:                  l.Source,
		City:                    l.City,
		TargetRegion:            l.TargetRegion,
		LeadCreatedAt:           l.LeadCreatedAt,
		EstablishmentName:       l.EstablishmentName,
		RepresentativeName:      l.RepresentativeName,
		ContractStatus:          l.ContractStatus,
		Business99Status:        l.Business99Status,
		RepresentativePhone:     l.RepresentativePhone,
		RepresentativePhoneNorm: l.RepresentativePhoneNorm,
		IsBlockedNumber:         l.IsBlockedNumber,
		CompanyCategory:         l.CompanyCategory,
		Address:                 l.Address,
		UniqueKey:               l.UniqueKey,
		FirstSeenAt:             l.FirstSeenAt,
		LastSeenAt:              l.LastSeenAt,
	}
}
