package lead

import "time"

// Column names shared between the upsert engine's field-level diff and
// the storage layer's update whitelist.
const (
	FieldSource              = "source"
	FieldCity                = "city"
	FieldTargetRegion        = "target_region"
	FieldLeadCreatedAt       = "lead_created_at"
	FieldEstablishmentName   = "establishment_name"
	FieldRepresentativeName  = "representative_name"
	FieldContractStatus      = "contract_status"
	FieldBusiness99Status    = "business_99_status"
	FieldRepresentativePhone = "representative_phone"
	FieldPhoneNorm           = "representative_phone_norm"
	FieldIsBlockedNumber     = "is_blocked_number"
	FieldCompanyCategory     = "company_category"
	FieldAddress             = "address"
	FieldUniqueKey           = "unique_key"
	FieldLastSeenAt          = "last_seen_at"
)

type Lead struct {
	ID                      int64
	Source                  string
	City                    string
	TargetRegion            string
	LeadCreatedAt           *time.Time
	EstablishmentName       string
	RepresentativeName      string
	ContractStatus          string
	Business99Status        string
	RepresentativePhone     string
	RepresentativePhoneNorm string
	IsBlockedNumber         bool
	CompanyCategory         string
	Address                 string
	UniqueKey               string
	FirstSeenAt             time.Time
	LastSeenAt              time.Time
}

type UpsertResult struct {
	Created   int
	Updated   int
	Ignored   int
	Invalid   int
	Processed int
}

func (r UpsertResult) Add(other UpsertResult) UpsertResult {
	return UpsertResult{
		Created:   r.Created + other.Created,
		Updated:   r.Updated + other.Updated,
		Ignored:   r.Ignored + other.Ignored,
		Invalid:   r.Invalid + other.Invalid,
		Processed: r.Processed + other.Processed,
	}
}

const (
	RunTypeAPI = "api"
	RunTypeCSV = "csv"

	RunStatusRunning = "running"
	RunStatusSuccess = "success"
	RunStatusError   = "error"
)

// IngestionRun records one ingestion batch: opened as "running" before
// the upsert starts and finalized with the aggregate counters.
type IngestionRun struct {
	ID            string
	RunType       string
	Status        string
	Source        string
	StartedAt     time.Time
	FinishedAt    *time.Time
	TotalReceived int
	CreatedCount  int
	UpdatedCount  int
	IgnoredCount  int
	InvalidCount  int
	Message       string
}
