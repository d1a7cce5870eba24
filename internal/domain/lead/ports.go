package lead

import (
	"context"
	"time"
)

// ListFilter narrows List queries. Zero values mean "no filter".
type ListFilter struct {
	Query   string
	Source  string
	City    string
	Blocked *bool
	Limit   int
	Offset  int
}

// Store is the persisted record store the upsert engine runs against.
// Find methods report "no match" as (nil, nil); errors are reserved
// for storage-level failures. Create and Update return ErrDuplicateKey
// when the unique_key constraint is violated.
type Store interface {
	FindByUniqueKey(ctx context.Context, key string) (*Lead, error)
	FindByPhoneIdentity(ctx context.Context, source, city, establishment, phoneNorm string) (*Lead, error)
	FindByAddressIdentity(ctx context.Context, source, city, establishment, address string) (*Lead, error)
	HasBlockedPhone(ctx context.Context, phoneNorm string, excludeID int64) (bool, error)
	Create(ctx context.Context, l *Lead) error
	Update(ctx context.Context, l *Lead, fields []string) error
	GetByID(ctx context.Context, id int64) (*Lead, error)
	List(ctx context.Context, filter ListFilter) ([]Lead, error)
	SetBlockedByPhone(ctx context.Context, phoneNorm string, blocked bool, now time.Time) (int64, error)
	SetBlockedByID(ctx context.Context, id int64, blocked bool, now time.Time) (int64, error)
}

// RunRepository is the run-log sink ingestion batches report into.
type RunRepository interface {
	Start(ctx context.Context, runType, source string) (string, error)
	FinishSuccess(ctx context.Context, runID string, result UpsertResult, message string) error
	FinishError(ctx context.Context, runID string, message string) error
	ListRecent(ctx context.Context, limit int) ([]IngestionRun, error)
}
