package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "github.com/gattaran/lead-intake/internal/domain/lead"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolationCode = "23505"

const leadColumns = `id, source, city, target_region, lead_created_at, establishment_name,
representative_name, contract_status, business_99_status, representative_phone,
representative_phone_norm, is_blocked_number, company_category, address, unique_key,
first_seen_at, last_seen_at`

// LeadRepository is the pgx-backed lead store. Uniqueness of
// unique_key is enforced by the database; violations surface as
// domain.ErrDuplicateKey so the engine can recover.
type LeadRepository struct {
	pool *pgxpool.Pool
}

func NewLeadRepository(pool *pgxpool.Pool) *LeadRepository {
	return &LeadRepository{pool: pool}
}

func (r *LeadRepository) FindByUniqueKey(ctx context.Context, key string) (*domain.Lead, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE unique_key = $1`, key)
	return scanOptionalLead(row, "find lead by unique key")
}

func (r *LeadRepository) FindByPhoneIdentity(ctx context.Context, source, city, establishment, phoneNorm string) (*domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `
SELECT `+leadColumns+`
FROM leads
WHERE source = $1
  AND LOWER(city) = LOWER($2)
  AND LOWER(establishment_name) = LOWER($3)
  AND representative_phone_norm = $4
ORDER BY last_seen_at DESC, id DESC
LIMIT 1`, source, city, establishment, phoneNorm)
	return scanOptionalLead(row, "find lead by phone identity")
}

func (r *LeadRepository) FindByAddressIdentity(ctx context.Context, source, city, establishment, address string) (*domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `
SELECT `+leadColumns+`
FROM leads
WHERE source = $1
  AND LOWER(city) = LOWER($2)
  AND LOWER(establishment_name) = LOWER($3)
  AND LOWER(address) = LOWER($4)
ORDER BY last_seen_at DESC, id DESC
LIMIT 1`, source, city, establishment, address)
	return scanOptionalLead(row, "find lead by address identity")
}

func (r *LeadRepository) HasBlockedPhone(ctx context.Context, phoneNorm string, excludeID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
SELECT EXISTS (
  SELECT 1 FROM leads
  WHERE representative_phone_norm = $1
    AND is_blocked_number
    AND id <> $2
)`, phoneNorm, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check blocked phone: %w", err)
	}
	return exists, nil
}

func (r *LeadRepository) Create(ctx context.Context, l *domain.Lead) error {
	err := r.pool.QueryRow(ctx, `
INSERT INTO leads (
  source, city, target_region, lead_created_at, establishment_name,
  representative_name, contract_status, business_99_status, representative_phone,
  representative_phone_norm, is_blocked_number, company_category, address,
  unique_key, first_seen_at, last_seen_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
RETURNING id`,
		l.Source, l.City, l.TargetRegion, l.LeadCreatedAt, l.EstablishmentName,
		l.RepresentativeName, l.ContractStatus, l.Business99Status, l.RepresentativePhone,
		l.RepresentativePhoneNorm, l.IsBlockedNumber, l.CompanyCategory, l.Address,
		l.UniqueKey, l.FirstSeenAt, l.LastSeenAt,
	).Scan(&l.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateKey
		}
		return fmt.Errorf("create lead: %w", err)
	}
	return nil
}

// Update writes only the named fields, mirroring the engine's
// field-level diff. Unknown field names are a programming error.
func (r *LeadRepository) Update(ctx context.Context, l *domain.Lead, fields []string) error {
	if len(fields) == 0 {
		return nil
	}

	assignments := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields)+1)
	for _, field := range fields {
		value, err := fieldValue(l, field)
		if err != nil {
			return err
		}
		args = append(args, value)
		assignments = append(assignments, fmt.Sprintf("%s = $%d", field, len(args)))
	}
	args = append(args, l.ID)

	query := fmt.Sprintf("UPDATE leads SET %s WHERE id = $%d",
		strings.Join(assignments, ", "), len(args))
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateKey
		}
		return fmt.Errorf("update lead %d: %w", l.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLeadNotFound
	}
	return nil
}

func (r *LeadRepository) GetByID(ctx context.Context, id int64) (*domain.Lead, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	found, err := scanOptionalLead(row, "get lead by id")
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, domain.ErrLeadNotFound
	}
	return found, nil
}

func (r *LeadRepository) List(ctx context.Context, filter domain.ListFilter) ([]domain.Lead, error) {
	var conditions []string
	var args []any

	addArg := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Source != "" {
		conditions = append(conditions, "source = "+addArg(filter.Source))
	}
	if filter.City != "" {
		conditions = append(conditions, "LOWER(city) = LOWER("+addArg(filter.City)+")")
	}
	if filter.Blocked != nil {
		conditions = append(conditions, "is_blocked_number = "+addArg(*filter.Blocked))
	}
	if filter.Query != "" {
		pattern := addArg("%" + filter.Query + "%")
		conditions = append(conditions, fmt.Sprintf(`(
  city ILIKE %[1]s OR target_region ILIKE %[1]s OR establishment_name ILIKE %[1]s
  OR representative_name ILIKE %[1]s OR contract_status ILIKE %[1]s
  OR business_99_status ILIKE %[1]s OR representative_phone ILIKE %[1]s
  OR company_category ILIKE %[1]s OR address ILIKE %[1]s
)`, pattern))
	}

	query := `SELECT ` + leadColumns + ` FROM leads`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY last_seen_at DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT " + addArg(filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + addArg(filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	var leads []domain.Lead
	for rows.Next() {
		var l domain.Lead
		if err := scanLead(rows, &l); err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	return leads, nil
}

func (r *LeadRepository) SetBlockedByPhone(ctx context.Context, phoneNorm string, blocked bool, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
UPDATE leads SET is_blocked_number = $1, last_seen_at = $2
WHERE representative_phone_norm = $3`, blocked, now, phoneNorm)
	if err != nil {
		return 0, fmt.Errorf("set blocked by phone: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *LeadRepository) SetBlockedByID(ctx context.Context, id int64, blocked bool, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
UPDATE leads SET is_blocked_number = $1, last_seen_at = $2
WHERE id = $3`, blocked, now, id)
	if err != nil {
		return 0, fmt.Errorf("set blocked by id: %w", err)
	}
	return tag.RowsAffected(), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner, l *domain.Lead) error {
	return row.Scan(
		&l.ID, &l.Source, &l.City, &l.TargetRegion, &l.LeadCreatedAt,
		&l.EstablishmentName, &l.RepresentativeName, &l.ContractStatus,
		&l.Business99Status, &l.RepresentativePhone, &l.RepresentativePhoneNorm,
		&l.IsBlockedNumber, &l.CompanyCategory, &l.Address, &l.UniqueKey,
		&l.FirstSeenAt, &l.LastSeenAt,
	)
}

func scanOptionalLead(row rowScanner, op string) (*domain.Lead, error) {
	var l domain.Lead
	if err := scanLead(row, &l); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &l, nil
}

func fieldValue(l *domain.Lead, field string) (any, error) {
	switch field {
	case domain.FieldSource:
		return l.Source, nil
	case domain.FieldCity:
		return l.City, nil
	case domain.FieldTargetRegion:
		return l.TargetRegion, nil
	case domain.FieldLeadCreatedAt:
		return l.LeadCreatedAt, nil
	case domain.FieldEstablishmentName:
		return l.EstablishmentName, nil
	case domain.FieldRepresentativeName:
		return l.RepresentativeName, nil
	case domain.FieldContractStatus:
		return l.ContractStatus, nil
	case domain.FieldBusiness99Status:
		return l.Business99Status, nil
	case domain.FieldRepresentativePhone:
		return l.RepresentativePhone, nil
	case domain.FieldPhoneNorm:
		return l.RepresentativePhoneNorm, nil
	case domain.FieldIsBlockedNumber:
		return l.IsBlockedNumber, nil
	case domain.FieldCompanyCategory:
		return l.CompanyCategory, nil
	case domain.FieldAddress:
		return l.Address, nil
	case domain.FieldUniqueKey:
		return l.UniqueKey, nil
	case domain.FieldLastSeenAt:
		return l.LastSeenAt, nil
	default:
		return nil, fmt.Errorf("unknown lead field %q", field)
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
