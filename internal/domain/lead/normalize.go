package lead

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Display-column order of the canonical fields, as emitted by the
// upstream scraper exports. Also drives the empty-row check and the
// CSV export layout.
var ExportColumns = []struct {
	Field string
	Label string
}{
	{FieldCity, "Cidade"},
	{FieldTargetRegion, "Regiao-alvo"},
	{FieldLeadCreatedAt, "Horario de criacao do lead"},
	{FieldEstablishmentName, "Nome do estabelecimento"},
	{FieldRepresentativeName, "Nome do representante 99"},
	{FieldContractStatus, "Status do contrato"},
	{FieldRepresentativePhone, "Telefone do representante do estabelecimento"},
	{FieldCompanyCategory, "Categoria da empresa"},
	{FieldAddress, "Endereco"},
}

// Every recognized header spelling, keyed by its normalized form.
// Covers the Portuguese display headers and their machine synonyms.
var headerAliases = map[string]string{
	"cidade":                   FieldCity,
	"city":                     FieldCity,
	"regiao alvo":              FieldTargetRegion,
	"regiao-alvo":              FieldTargetRegion,
	"target region":            FieldTargetRegion,
	"horario de criacao do lead": FieldLeadCreatedAt,
	"horario criacao do lead":    FieldLeadCreatedAt,
	"lead created at":            FieldLeadCreatedAt,
	"nome do estabelecimento":    FieldEstablishmentName,
	"establishment name":         FieldEstablishmentName,
	"nome do representante 99":   FieldRepresentativeName,
	"representative name":        FieldRepresentativeName,
	"status do contrato":         FieldContractStatus,
	"contract status":            FieldContractStatus,
	"telefone do representante do estabelecimento": FieldRepresentativePhone,
	"representative phone":                         FieldRepresentativePhone,
	"categoria da empresa":                         FieldCompanyCategory,
	"company category":                             FieldCompanyCategory,
	"endereco":                                     FieldAddress,
	"address":                                      FieldAddress,
	"source":                                       FieldSource,
}

// Maximum stored lengths. Longer values are silently truncated, never
// rejected.
const (
	maxTextField      = 255
	maxStatusField    = 100
	maxPhoneField     = 50
	maxSourceField    = 50
	maxPhoneNormField = 32
)

var (
	nonWordRun    = regexp.MustCompile(`[^\p{L}\p{N}_\s-]+`)
	whitespaceRun = regexp.MustCompile(`\s+`)
	nonDigit      = regexp.MustCompile(`\D`)

	stripMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
)

// NormalizedRecord is the fixed output shape of row normalization: the
// nine canonical fields plus the resolved source and the canonical
// phone digits.
type NormalizedRecord struct {
	Source              string
	City                string
	TargetRegion        string
	LeadCreatedAt       *time.Time
	EstablishmentName   string
	RepresentativeName  string
	ContractStatus      string
	RepresentativePhone string
	CompanyCategory     string
	Address             string
	PhoneNorm           string
}

// Empty reports whether the row carried no usable data: not a single
// canonical field was populated.
func (r NormalizedRecord) Empty() bool {
	return r.City == "" &&
		r.TargetRegion == "" &&
		r.LeadCreatedAt == nil &&
		r.EstablishmentName == "" &&
		r.RepresentativeName == "" &&
		r.ContractStatus == "" &&
		r.RepresentativePhone == "" &&
		r.CompanyCategory == "" &&
		r.Address == ""
}

// NormalizeText strips diacritics, collapses runs of punctuation and
// whitespace to single spaces and trims. Hyphens and underscores
// survive so header spellings like "regiao-alvo" keep their shape.
func NormalizeText(value string) string {
	text := strings.TrimSpace(value)
	if text == "" {
		return ""
	}
	if stripped, _, err := transform.String(stripMarks, text); err == nil {
		text = stripped
	}
	text = nonWordRun.ReplaceAllString(text, " ")
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
}

// NormalizeHeader folds a column header for alias lookup: accent,
// case and whitespace insensitive, with underscores treated as spaces.
func NormalizeHeader(value string) string {
	return strings.ToLower(strings.ReplaceAll(NormalizeText(value), "_", " "))
}

// NormalizePhone canonicalizes a display phone to bare digits with the
// country code prefixed. Implausible digit strings pass through
// unchanged; this is permissive on purpose, not validating.
func NormalizePhone(value string) string {
	digits := nonDigit.ReplaceAllString(value, "")
	if strings.HasPrefix(digits, "55") && len(digits) > 11 {
		return digits
	}
	if len(digits) == 10 || len(digits) == 11 {
		return "55" + digits
	}
	return digits
}

func collapseSpaces(value string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(value, " "))
}

func truncate(value string, max int) string {
	r := []rune(value)
	if len(r) <= max {
		return value
	}
	return string(r[:max])
}

var leadTimePattern = regexp.MustCompile(
	`(\d{4}-\d{2}-\d{2})[ T](\d{2}:\d{2}(?::\d{2})?)(?:\s*[Uu][Tt][Cc]([+-]\d{1,2})(?::?(\d{2}))?)?`,
)

var leadTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// ParseLeadTime parses the origin system's creation timestamps:
// ISO-like date/time strings, optionally annotated with a trailing
// "UTC-3" style offset, falling back to a bare date. Results land in
// loc. Unparseable input yields nil, never an error.
func ParseLeadTime(value string, loc *time.Location) *time.Time {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return nil
	}
	if loc == nil {
		loc = time.Local
	}

	for _, layout := range leadTimeLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			t = t.In(loc)
			return &t
		}
	}

	if m := leadTimePattern.FindStringSubmatch(raw); m != nil {
		stamp := m[1] + " " + m[2]
		layout := "2006-01-02 15:04:05"
		if len(m[2]) == 5 {
			layout = "2006-01-02 15:04"
		}
		if m[3] != "" {
			hours, _ := strconv.Atoi(m[3])
			minutes := 0
			if m[4] != "" {
				minutes, _ = strconv.Atoi(m[4])
			}
			if hours < 0 {
				minutes = -minutes
			}
			offset := time.FixedZone(fmt.Sprintf("UTC%s", m[3]), hours*3600+minutes*60)
			if t, err := time.ParseInLocation(layout, stamp, offset); err == nil {
				t = t.In(loc)
				return &t
			}
		}
		if t, err := time.ParseInLocation(layout, stamp, loc); err == nil {
			return &t
		}
	}

	if t, err := time.ParseInLocation("2006-01-02", raw, loc); err == nil {
		return &t
	}
	return nil
}

func normalizeValue(field, value string) string {
	text := strings.TrimSpace(value)
	switch field {
	case FieldCity, FieldTargetRegion, FieldContractStatus, FieldCompanyCategory:
		text = NormalizeText(text)
	case FieldEstablishmentName, FieldRepresentativeName, FieldAddress:
		text = collapseSpaces(text)
	}
	switch field {
	case FieldContractStatus:
		return truncate(text, maxStatusField)
	case FieldRepresentativePhone:
		return truncate(text, maxPhoneField)
	case FieldAddress:
		return text
	default:
		return truncate(text, maxTextField)
	}
}

func valueText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// NormalizeRow canonicalizes one raw row into a NormalizedRecord.
// Input keys are arbitrary header spellings; unrecognized headers are
// ignored. The phone-norm is derived last from whichever phone value
// was captured.
func NormalizeRow(raw map[string]any, defaultSource string, loc *time.Location) NormalizedRecord {
	rec := NormalizedRecord{Source: defaultSource}

	for key, value := range raw {
		field, ok := headerAliases[NormalizeHeader(key)]
		if !ok {
			continue
		}
		text := valueText(value)
		switch field {
		case FieldSource:
			if trimmed := truncate(strings.TrimSpace(text), maxSourceField); trimmed != "" {
				rec.Source = trimmed
			}
		case FieldCity:
			rec.City = normalizeValue(field, text)
		case FieldTargetRegion:
			rec.TargetRegion = normalizeValue(field, text)
		case FieldLeadCreatedAt:
			rec.LeadCreatedAt = ParseLeadTime(text, loc)
		case FieldEstablishmentName:
			rec.EstablishmentName = normalizeValue(field, text)
		case FieldRepresentativeName:
			rec.RepresentativeName = normalizeValue(field, text)
		case FieldContractStatus:
			rec.ContractStatus = normalizeValue(field, text)
		case FieldRepresentativePhone:
			rec.RepresentativePhone = normalizeValue(field, text)
		case FieldCompanyCategory:
			rec.CompanyCategory = normalizeValue(field, text)
		case FieldAddress:
			rec.Address = normalizeValue(field, text)
		}
	}

	rec.PhoneNorm = truncate(NormalizePhone(rec.RepresentativePhone), maxPhoneNormField)
	return rec
}
