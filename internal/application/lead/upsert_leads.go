package lead

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/gattaran/lead-intake/internal/domain/lead"
	"go.uber.org/zap"
)

type upsertStore interface {
	FindByUniqueKey(ctx context.Context, key string) (*domain.Lead, error)
	FindByPhoneIdentity(ctx context.Context, source, city, establishment, phoneNorm string) (*domain.Lead, error)
	FindByAddressIdentity(ctx context.Context, source, city, establishment, address string) (*domain.Lead, error)
	HasBlockedPhone(ctx context.Context, phoneNorm string, excludeID int64) (bool, error)
	Create(ctx context.Context, l *domain.Lead) error
	Update(ctx context.Context, l *domain.Lead, fields []string) error
}

// UpsertEngine deduplicates and persists raw ingestion rows. Data
// quality problems are absorbed into the invalid/ignored counters;
// only storage-level failures abort a batch.
type UpsertEngine struct {
	store upsertStore
	loc   *time.Location
	now   func() time.Time
	log   *zap.SugaredLogger
}

func NewUpsertEngine(store upsertStore, loc *time.Location, log *zap.SugaredLogger) *UpsertEngine {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &UpsertEngine{
		store: store,
		loc:   loc,
		now:   time.Now,
		log:   log,
	}
}

// UpsertRows runs the per-row create-or-update algorithm over a batch.
// Rows may be map[string]any (JSON) or map[string]string (CSV); any
// other shape counts as invalid. The partial result is returned
// alongside a storage error so the caller can still log counts.
func (e *UpsertEngine) UpsertRows(ctx context.Context, rows []any, defaultSource string) (domain.UpsertResult, error) {
	var result domain.UpsertResult

	for _, row := range rows {
		raw, ok := asRowMap(row)
		if !ok {
			result.Invalid++
			result.Processed++
			continue
		}

		rec := domain.NormalizeRow(raw, defaultSource, e.loc)
		if rec.Empty() {
			result.Ignored++
			result.Processed++
			continue
		}

		key := domain.BuildUniqueKey(rec)
		existing, err := e.resolve(ctx, key, rec)
		if err != nil {
			return result, fmt.Errorf("resolve lead identity: %w", err)
		}

		if existing == nil {
			created, racedLead, err := e.create(ctx, key, rec)
			if err != nil {
				return result, err
			}
			if created {
				result.Created++
				result.Processed++
				continue
			}
			if racedLead == nil {
				// Lost the create race and the winner vanished
				// before re-resolution; nothing left to update.
				e.log.Warnw("create race left no record to update", "unique_key", key)
				result.Invalid++
				result.Processed++
				continue
			}
			existing = racedLead
		}

		if err := e.update(ctx, existing, key, rec); err != nil {
			return result, err
		}
		result.Updated++
		result.Processed++
	}

	return result, nil
}

// resolve walks the match tiers in order: exact key, phone identity,
// then address identity for rows that carry an address.
func (e *UpsertEngine) resolve(ctx context.Context, key string, rec domain.NormalizedRecord) (*domain.Lead, error) {
	found, err := e.store.FindByUniqueKey(ctx, key)
	if err != nil || found != nil {
		return found, err
	}

	found, err = e.store.FindByPhoneIdentity(ctx, rec.Source, rec.City, rec.EstablishmentName, rec.PhoneNorm)
	if err != nil || found != nil {
		return found, err
	}

	if rec.Address == "" {
		return nil, nil
	}
	return e.store.FindByAddressIdentity(ctx, rec.Source, rec.City, rec.EstablishmentName, rec.Address)
}

// create persists a new lead, inheriting the blocked flag from any
// existing lead sharing the phone. A uniqueness race is not a row
// failure: the row falls through to the update path against the
// record the concurrent writer created.
func (e *UpsertEngine) create(ctx context.Context, key string, rec domain.NormalizedRecord) (bool, *domain.Lead, error) {
	blocked := false
	if rec.PhoneNorm != "" {
		var err error
		blocked, err = e.store.HasBlockedPhone(ctx, rec.PhoneNorm, 0)
		if err != nil {
			return false, nil, fmt.Errorf("check blocked phone: %w", err)
		}
	}

	now := e.now()
	fresh := &domain.Lead{
		Source:                  rec.Source,
		City:                    rec.City,
		TargetRegion:            rec.TargetRegion,
		LeadCreatedAt:           rec.LeadCreatedAt,
		EstablishmentName:       rec.EstablishmentName,
		RepresentativeName:      rec.RepresentativeName,
		ContractStatus:          rec.ContractStatus,
		RepresentativePhone:     rec.RepresentativePhone,
		RepresentativePhoneNorm: rec.PhoneNorm,
		IsBlockedNumber:         blocked,
		CompanyCategory:         rec.CompanyCategory,
		Address:                 rec.Address,
		UniqueKey:               key,
		FirstSeenAt:             now,
		LastSeenAt:              now,
	}

	err := e.store.Create(ctx, fresh)
	if err == nil {
		return true, nil, nil
	}
	if !errors.Is(err, domain.ErrDuplicateKey) {
		return false, nil, fmt.Errorf("create lead: %w", err)
	}

	raced, resolveErr := e.resolve(ctx, key, rec)
	if resolveErr != nil {
		return false, nil, fmt.Errorf("re-resolve after create race: %w", resolveErr)
	}
	return false, raced, nil
}

func (e *UpsertEngine) update(ctx context.Context, existing *domain.Lead, key string, rec domain.NormalizedRecord) error {
	var changed []string

	if existing.UniqueKey != key {
		existing.UniqueKey = key
		changed = append(changed, domain.FieldUniqueKey)
	}
	for field, apply := range diffFields(existing, rec) {
		apply()
		changed = append(changed, field)
	}

	if existing.RepresentativePhoneNorm != "" && !existing.IsBlockedNumber {
		blocked, err := e.store.HasBlockedPhone(ctx, existing.RepresentativePhoneNorm, existing.ID)
		if err != nil {
			return fmt.Errorf("check blocked phone: %w", err)
		}
		if blocked {
			existing.IsBlockedNumber = true
			changed = append(changed, domain.FieldIsBlockedNumber)
		}
	}

	existing.LastSeenAt = e.now()
	changed = append(changed, domain.FieldLastSeenAt)

	err := e.store.Update(ctx, existing, changed)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrDuplicateKey) || !containsField(changed, domain.FieldUniqueKey) {
		return fmt.Errorf("update lead %d: %w", existing.ID, err)
	}

	// A concurrent writer owns this key now. Keep this record unique
	// by suffixing its own identifier and retry once.
	existing.UniqueKey = domain.SuffixKey(key, existing.ID)
	if err := e.store.Update(ctx, existing, changed); err != nil {
		return fmt.Errorf("update lead %d with suffixed key: %w", existing.ID, err)
	}
	return nil
}

// diffFields returns the set of stored fields whose incoming
// normalized value differs, keyed by column name.
func diffFields(existing *domain.Lead, rec domain.NormalizedRecord) map[string]func() {
	changes := make(map[string]func())

	if existing.Source != rec.Source {
		changes[domain.FieldSource] = func() { existing.Source = rec.Source }
	}
	if existing.City != rec.City {
		changes[domain.FieldCity] = func() { existing.City = rec.City }
	}
	if existing.TargetRegion != rec.TargetRegion {
		changes[domain.FieldTargetRegion] = func() { existing.TargetRegion = rec.TargetRegion }
	}
	if !sameTime(existing.LeadCreatedAt, rec.LeadCreatedAt) {
		changes[domain.FieldLeadCreatedAt] = func() { existing.LeadCreatedAt = rec.LeadCreatedAt }
	}
	if existing.EstablishmentName != rec.EstablishmentName {
		changes[domain.FieldEstablishmentName] = func() { existing.EstablishmentName = rec.EstablishmentName }
	}
	if existing.RepresentativeName != rec.RepresentativeName {
		changes[domain.FieldRepresentativeName] = func() { existing.RepresentativeName = rec.RepresentativeName }
	}
	if existing.ContractStatus != rec.ContractStatus {
		changes[domain.FieldContractStatus] = func() { existing.ContractStatus = rec.ContractStatus }
	}
	if existing.RepresentativePhone != rec.RepresentativePhone {
		changes[domain.FieldRepresentativePhone] = func() { existing.RepresentativePhone = rec.RepresentativePhone }
	}
	if existing.RepresentativePhoneNorm != rec.PhoneNorm {
		changes[domain.FieldPhoneNorm] = func() { existing.RepresentativePhoneNorm = rec.PhoneNorm }
	}
	if existing.CompanyCategory != rec.CompanyCategory {
		changes[domain.FieldCompanyCategory] = func() { existing.CompanyCategory = rec.CompanyCategory }
	}
	if existing.Address != rec.Address {
		changes[domain.FieldAddress] = func() { existing.Address = rec.Address }
	}

	return changes
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func containsField(fields []string, field string) bool {
	for _, f := range fields {
		if f == field {
			return true
		}
	}
	return false
}

func asRowMap(row any) (map[string]any, bool) {
	switch m := row.(type) {
	case map[string]any:
		return m, true
	case map[string]string:
		converted := make(map[string]any, len(m))
		for k, v := range m {
			converted[k] = v
		}
		return converted, true
	default:
		return nil, false
	}
}
