package lead

import (
	"context"
	"fmt"

	domain "github.com/gattaran/lead-intake/internal/domain/lead"
	"go.uber.org/zap"
)

type IngestRowsInput struct {
	Rows    []any
	RunType string
	Source  string
}

type IngestRowsOutput struct {
	RunID     string `json:"run_id"`
	Created   int    `json:"created"`
	Updated   int    `json:"updated"`
	Ignored   int    `json:"ignored"`
	Invalid   int    `json:"invalid"`
	Processed int    `json:"processed"`
}

type IngestRows interface {
	Execute(ctx context.Context, in IngestRowsInput) (IngestRowsOutput, error)
}

type rowUpserter interface {
	UpsertRows(ctx context.Context, rows []any, defaultSource string) (domain.UpsertResult, error)
}

type runLogger interface {
	Start(ctx context.Context, runType, source string) (string, error)
	FinishSuccess(ctx context.Context, runID string, result domain.UpsertResult, message string) error
	FinishError(ctx context.Context, runID string, message string) error
}

type ingestRows struct {
	engine rowUpserter
	runs   runLogger
	log    *zap.SugaredLogger
}

func NewIngestRows(engine rowUpserter, runs runLogger, log *zap.SugaredLogger) IngestRows {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &ingestRows{engine: engine, runs: runs, log: log}
}

// Execute wraps one upsert batch in an IngestionRun: opened before the
// first row, finalized with the aggregate counters or an error
// message. Per-row data problems never fail the run; only storage
// failures do.
func (uc *ingestRows) Execute(ctx context.Context, in IngestRowsInput) (IngestRowsOutput, error) {
	runID, err := uc.runs.Start(ctx, in.RunType, in.Source)
	if err != nil {
		return IngestRowsOutput{}, fmt.Errorf("%w: %v", ErrIngestRows, err)
	}

	if len(in.Rows) == 0 {
		if finishErr := uc.runs.FinishError(ctx, runID, "batch had no rows"); finishErr != nil {
			uc.log.Errorw("finish empty run", "run_id", runID, "error", finishErr)
		}
		return IngestRowsOutput{RunID: runID}, ErrEmptyBatch
	}

	result, err := uc.engine.UpsertRows(ctx, in.Rows, in.Source)
	if err != nil {
		uc.log.Errorw("upsert batch failed", "run_id", runID, "source", in.Source, "error", err)
		if finishErr := uc.runs.FinishError(ctx, runID, "internal error while processing batch"); finishErr != nil {
			uc.log.Errorw("finish failed run", "run_id", runID, "error", finishErr)
		}
		return IngestRowsOutput{RunID: runID}, fmt.Errorf("%w: %v", ErrIngestRows, err)
	}

	message := fmt.Sprintf(
		"Import finished. Processed: %d | Created: %d | Updated: %d | Ignored: %d | Invalid: %d",
		result.Processed, result.Created, result.Updated, result.Ignored, result.Invalid,
	)
	if err := uc.runs.FinishSuccess(ctx, runID, result, message); err != nil {
		uc.log.Errorw("finish successful run", "run_id", runID, "error", err)
	}

	uc.log.Infow("ingestion batch finished",
		"run_id", runID,
		"run_type", in.RunType,
		"source", in.Source,
		"processed", result.Processed,
		"created", result.Created,
		"updated", result.Updated,
	)

	return IngestRowsOutput{
		RunID:     runID,
		Created:   result.Created,
		Updated:   result.Updated,
		Ignored:   result.Ignored,
		Invalid:   result.Invalid,
		Processed: result.Processed,
	}, nil
}
