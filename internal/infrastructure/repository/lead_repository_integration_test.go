package repository_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	domain "github.com/gattaran/lead-intake/internal/domain/lead"
	"github.com/gattaran/lead-intake/internal/infrastructure/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

const leadSchemaSQL = `
CREATE TABLE IF NOT EXISTS leads (
  id BIGSERIAL PRIMARY KEY,
  source VARCHAR(50) NOT NULL,
  city VARCHAR(255) NOT NULL DEFAULT '',
  target_region VARCHAR(255) NOT NULL DEFAULT '',
  lead_created_at TIMESTAMPTZ,
  establishment_name VARCHAR(255) NOT NULL DEFAULT '',
  representative_name VARCHAR(255) NOT NULL DEFAULT '',
  contract_status VARCHAR(100) NOT NULL DEFAULT '',
  business_99_status VARCHAR(100) NOT NULL DEFAULT '',
  representative_phone VARCHAR(50) NOT NULL DEFAULT '',
  representative_phone_norm VARCHAR(32) NOT NULL DEFAULT '',
  is_blocked_number BOOLEAN NOT NULL DEFAULT FALSE,
  company_category VARCHAR(255) NOT NULL DEFAULT '',
  address VARCHAR(255) NOT NULL DEFAULT '',
  unique_key VARCHAR(64) NOT NULL UNIQUE,
  first_seen_at TIMESTAMPTZ NOT NULL,
  last_seen_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_leads_phone_norm ON leads (representative_phone_norm);
CREATE INDEX IF NOT EXISTS idx_leads_identity ON leads (source, LOWER(city), LOWER(establishment_name));
`

func newLeadRepo(t *testing.T) (*repository.LeadRepository, *pgxpool.Pool) {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("failed to create pgx pool: %v", err)
	}
	t.Cleanup(pool.Close)

	if _, err := pool.Exec(context.Background(), leadSchemaSQL); err != nil {
		t.Fatalf("failed schema setup: %v", err)
	}
	if _, err := pool.Exec(context.Background(), "DELETE FROM leads"); err != nil {
		t.Fatalf("failed cleanup: %v", err)
	}
	return repository.NewLeadRepository(pool), pool
}

func sampleLead(key string) *domain.Lead {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Lead{
		Source:                  "99Food",
		City:                    "Sao Paulo",
		TargetRegion:            "Zona Sul",
		EstablishmentName:       "Padaria Central",
		RepresentativeName:      "Maria",
		ContractStatus:          "novo",
		RepresentativePhone:     "+55 (11) 98888-7777",
		RepresentativePhoneNorm: "5511988887777",
		CompanyCategory:         "padaria",
		Address:                 "Rua A, 10",
		UniqueKey:               key,
		FirstSeenAt:             now,
		LastSeenAt:              now,
	}
}

func TestLeadRepositoryCreateAndFindIntegration(t *testing.T) {
	repo, _ := newLeadRepo(t)
	ctx := context.Background()

	l := sampleLead("key-create-find")
	if err := repo.Create(ctx, l); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if l.ID == 0 {
		t.Fatal("expected id to be assigned")
	}

	found, err := repo.FindByUniqueKey(ctx, "key-create-find")
	if err != nil {
		t.Fatalf("find by unique key failed: %v", err)
	}
	if found == nil || found.ID != l.ID {
		t.Fatalf("expected lead %d, got %+v", l.ID, found)
	}

	missing, err := repo.FindByUniqueKey(ctx, "no-such-key")
	if err != nil {
		t.Fatalf("find missing key failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing key, got %+v", missing)
	}

	byPhone, err := repo.FindByPhoneIdentity(ctx, "99Food", "SAO PAULO", "padaria central", "5511988887777")
	if err != nil {
		t.Fatalf("find by phone identity failed: %v", err)
	}
	if byPhone == nil || byPhone.ID != l.ID {
		t.Fatalf("expected phone match %d, got %+v", l.ID, byPhone)
	}

	byAddress, err := repo.FindByAddressIdentity(ctx, "99Food", "Sao Paulo", "Padaria Central", "rua a, 10")
	if err != nil {
		t.Fatalf("find by address identity failed: %v", err)
	}
	if byAddress == nil || byAddress.ID != l.ID {
		t.Fatalf("expected address match %d, got %+v", l.ID, byAddress)
	}
}

func TestLeadRepositoryDuplicateKeyIntegration(t *testing.T) {
	repo, _ := newLeadRepo(t)
	ctx := context.Background()

	first := sampleLead("key-duplicate")
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	second := sampleLead("key-duplicate")
	err := repo.Create(ctx, second)
	if !errors.Is(err, domain.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestLeadRepositoryUpdateIntegration(t *testing.T) {
	repo, _ := newLeadRepo(t)
	ctx := context.Background()

	l := sampleLead("key-update")
	if err := repo.Create(ctx, l); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	l.ContractStatus = "assinado"
	l.LastSeenAt = l.LastSeenAt.Add(time.Hour)
	fields := []string{domain.FieldContractStatus, domain.FieldLastSeenAt}
	if err := repo.Update(ctx, l, fields); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	found, err := repo.GetByID(ctx, l.ID)
	if err != nil {
		t.Fatalf("get by id failed: %v", err)
	}
	if found.ContractStatus != "assinado" {
		t.Fatalf("expected updated status, got %q", found.ContractStatus)
	}
	if !found.LastSeenAt.Equal(l.LastSeenAt) {
		t.Fatalf("expected last_seen_at %v, got %v", l.LastSeenAt, found.LastSeenAt)
	}

	other := sampleLead("key-update-other")
	if err := repo.Create(ctx, other); err != nil {
		t.Fatalf("create other failed: %v", err)
	}
	other.UniqueKey = "key-update"
	err = repo.Update(ctx, other, []string{domain.FieldUniqueKey})
	if !errors.Is(err, domain.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey on key collision, got %v", err)
	}

	ghost := sampleLead("key-update-ghost")
	ghost.ID = 999999999
	err = repo.Update(ctx, ghost, []string{domain.FieldContractStatus})
	if !errors.Is(err, domain.ErrLeadNotFound) {
		t.Fatalf("expected ErrLeadNotFound for missing row, got %v", err)
	}
}

func TestLeadRepositoryBlockedPhoneIntegration(t *testing.T) {
	repo, _ := newLeadRepo(t)
	ctx := context.Background()

	first := sampleLead("key-block-1")
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	second := sampleLead("key-block-2")
	second.Address = "Rua B, 20"
	if err := repo.Create(ctx, second); err != nil {
		t.Fatalf("create second failed: %v", err)
	}

	blocked, err := repo.HasBlockedPhone(ctx, "5511988887777", 0)
	if err != nil {
		t.Fatalf("has blocked phone failed: %v", err)
	}
	if blocked {
		t.Fatal("expected no blocked phone yet")
	}

	affected, err := repo.SetBlockedByPhone(ctx, "5511988887777", true, time.Now().UTC())
	if err != nil {
		t.Fatalf("set blocked by phone failed: %v", err)
	}
	if affected != 2 {
		t.Fatalf("expected 2 rows blocked, got %d", affected)
	}

	blocked, err = repo.HasBlockedPhone(ctx, "5511988887777", first.ID)
	if err != nil {
		t.Fatalf("has blocked phone failed: %v", err)
	}
	if !blocked {
		t.Fatal("expected blocked phone after propagation")
	}

	affected, err = repo.SetBlockedByID(ctx, first.ID, false, time.Now().UTC())
	if err != nil {
		t.Fatalf("set blocked by id failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expected 1 row unblocked, got %d", affected)
	}
	found, err := repo.GetByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("get by id failed: %v", err)
	}
	if found.IsBlockedNumber {
		t.Fatal("expected lead to be unblocked")
	}
}

func TestLeadRepositoryListIntegration(t *testing.T) {
	repo, _ := newLeadRepo(t)
	ctx := context.Background()

	a := sampleLead("key-list-a")
	if err := repo.Create(ctx, a); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	b := sampleLead("key-list-b")
	b.City = "Campinas"
	b.EstablishmentName = "Mercado do Centro"
	b.LastSeenAt = b.LastSeenAt.Add(time.Minute)
	if err := repo.Create(ctx, b); err != nil {
		t.Fatalf("create second failed: %v", err)
	}

	leads, err := repo.List(ctx, domain.ListFilter{City: "campinas", Limit: 10})
	if err != nil {
		t.Fatalf("list by city failed: %v", err)
	}
	if len(leads) != 1 || leads[0].ID != b.ID {
		t.Fatalf("expected only campinas lead, got %+v", leads)
	}

	leads, err = repo.List(ctx, domain.ListFilter{Query: "mercado", Limit: 10})
	if err != nil {
		t.Fatalf("list by query failed: %v", err)
	}
	if len(leads) != 1 || leads[0].ID != b.ID {
		t.Fatalf("expected query match, got %+v", leads)
	}

	leads, err = repo.List(ctx, domain.ListFilter{Source: "99Food", Limit: 10})
	if err != nil {
		t.Fatalf("list by source failed: %v", err)
	}
	if len(leads) != 2 {
		t.Fatalf("expected 2 leads, got %d", len(leads))
	}
	if leads[0].ID != b.ID {
		t.Fatalf("expected most recent lead first, got %d", leads[0].ID)
	}
}
