package lead_test

import (
	"strings"
	"testing"
	"time"

	domain "github.com/gattaran/lead-intake/internal/domain/lead"
)

func saoPaulo(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func TestNormalizeTextStripsAccentsAndPunctuation(t *testing.T) {
	t.Parallel()

	got := domain.NormalizeText("  São   Paulo / Centro!  ")
	if got != "Sao Paulo Centro" {
		t.Fatalf("unexpected normalization: %q", got)
	}
}

func TestNormalizePhone(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"(11) 99999-0000", "5511999990000"},
		{"11999990000", "5511999990000"},
		{"1199999000", "551199999000"},
		{"+55 11 99999-0000", "5511999990000"},
		{"123", "123"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := domain.NormalizePhone(tc.in); got != tc.want {
			t.Fatalf("NormalizePhone(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseLeadTimeWithUTCOffset(t *testing.T) {
	t.Parallel()

	loc := saoPaulo(t)
	got := domain.ParseLeadTime("2026-02-02 13:45:20 UTC-3", loc)
	if got == nil {
		t.Fatal("expected a parsed timestamp")
	}
	want := time.Date(2026, 2, 2, 13, 45, 20, 0, time.FixedZone("UTC-3", -3*3600))
	if !got.Equal(want) {
		t.Fatalf("unexpected instant: %v", got)
	}
	if got.Location().String() != loc.String() {
		t.Fatalf("expected result in %v, got %v", loc, got.Location())
	}
}

func TestParseLeadTimeFallbacks(t *testing.T) {
	t.Parallel()

	loc := saoPaulo(t)

	if got := domain.ParseLeadTime("2026-02-02T13:45:20", loc); got == nil {
		t.Fatal("expected ISO datetime to parse")
	}
	if got := domain.ParseLeadTime("2026-02-02", loc); got == nil {
		t.Fatal("expected bare date to parse")
	} else if got.Hour() != 0 || got.Day() != 2 {
		t.Fatalf("unexpected bare-date result: %v", got)
	}
	if got := domain.ParseLeadTime("not a date", loc); got != nil {
		t.Fatalf("expected nil for nonsense input, got %v", got)
	}
	if got := domain.ParseLeadTime("", loc); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
}

func TestNormalizeRowMapsPortugueseHeaders(t *testing.T) {
	t.Parallel()

	rec := domain.NormalizeRow(map[string]any{
		"Cidade":                  "São Paulo",
		"Regiao-alvo":             "Zona Sul",
		"Nome do estabelecimento": "Loja  Teste",
		"Telefone do representante do estabelecimento": "(11) 99999-0000",
		"Status do contrato":   "Ativo",
		"Categoria da empresa": "Restaurante",
		"Endereco":             "Rua X,  123",
		"coluna desconhecida":  "ignorada",
	}, "gattaran", saoPaulo(t))

	if rec.Source != "gattaran" {
		t.Fatalf("unexpected source: %q", rec.Source)
	}
	if rec.City != "Sao Paulo" {
		t.Fatalf("unexpected city: %q", rec.City)
	}
	if rec.TargetRegion != "Zona Sul" {
		t.Fatalf("unexpected region: %q", rec.TargetRegion)
	}
	if rec.EstablishmentName != "Loja Teste" {
		t.Fatalf("unexpected establishment: %q", rec.EstablishmentName)
	}
	if rec.Address != "Rua X, 123" {
		t.Fatalf("unexpected address: %q", rec.Address)
	}
	if rec.PhoneNorm != "5511999990000" {
		t.Fatalf("unexpected phone norm: %q", rec.PhoneNorm)
	}
}

func TestNormalizeRowMachineHeadersAndSourceOverride(t *testing.T) {
	t.Parallel()

	rec := domain.NormalizeRow(map[string]any{
		"city":                "Rio",
		"establishment_name":  "Loja API",
		"representative_name": "Ana",
		"source":              "manual",
	}, "api", saoPaulo(t))

	if rec.Source != "manual" {
		t.Fatalf("expected explicit source to win, got %q", rec.Source)
	}
	if rec.City != "Rio" || rec.EstablishmentName != "Loja API" || rec.RepresentativeName != "Ana" {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestNormalizeRowTruncatesLongValues(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", 400)
	rec := domain.NormalizeRow(map[string]any{
		"city":               long,
		"establishment_name": long,
		"company_category":   long,
		"contract_status":    long,
		"representative_phone": "x" + strings.Repeat("9", 80),
	}, "csv", saoPaulo(t))

	if len(rec.City) != 255 {
		t.Fatalf("city length = %d, want 255", len(rec.City))
	}
	if len(rec.EstablishmentName) != 255 {
		t.Fatalf("establishment length = %d, want 255", len(rec.EstablishmentName))
	}
	if len(rec.CompanyCategory) != 255 {
		t.Fatalf("category length = %d, want 255", len(rec.CompanyCategory))
	}
	if len(rec.ContractStatus) != 100 {
		t.Fatalf("status length = %d, want 100", len(rec.ContractStatus))
	}
	if len(rec.RepresentativePhone) != 50 {
		t.Fatalf("phone length = %d, want 50", len(rec.RepresentativePhone))
	}
}

func TestNormalizeRowEmptyWhenNoCanonicalField(t *testing.T) {
	t.Parallel()

	rec := domain.NormalizeRow(map[string]any{
		"unrelated": "value",
		"other":     "thing",
	}, "api", saoPaulo(t))

	if !rec.Empty() {
		t.Fatalf("expected empty record, got %+v", rec)
	}
}
