package lead

import (
	"context"
	"fmt"
	"time"

	domain "github.com/gattaran/lead-intake/internal/domain/lead"
)

const defaultRunListLimit = 12

type ListRunsInput struct {
	Limit int
}

type RunOutput struct {
	ID            string     `json:"id"`
	RunType       string     `json:"run_type"`
	Status        string     `json:"status"`
	Source        string     `json:"source"`
	StartedAt     time.Time  `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at"`
	TotalReceived int        `json:"total_received"`
	CreatedCount  int        `json:"created_count"`
	UpdatedCount  int        `json:"updated_count"`
	IgnoredCount  int        `json:"ignored_count"`
	InvalidCount  int        `json:"invalid_count"`
	Message       string     `json:"message"`
}

type ListRunsOutput struct {
	Runs []RunOutput `json:"runs"`
}

type ListRuns interface {
	Execute(ctx context.Context, in ListRunsInput) (ListRunsOutput, error)
}

type runLister interface {
	ListRecent(ctx context.Context, limit int) ([]domain.IngestionRun, error)
}

type listRuns struct {
	runs runLister
}

func NewListRuns(runs runLister) ListRuns {
	return &listRuns{runs: runs}
}

func (uc *listRuns) Execute(ctx context.Context, in ListRunsInput) (ListRunsOutput, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = defaultRunListLimit
	}

	runs, err := uc.runs.ListRecent(ctx, limit)
	if err != nil {
		return ListRunsOutput{}, fmt.Errorf("%w: %v", ErrListRuns, err)
	}

	out := ListRunsOutput{Runs: make([]RunOutput, 0, len(runs))}
	for _, run := range runs {
		out.Runs = append(out.Runs, RunOutput{
			ID:            run.ID,
			RunType:       run.RunType,
			Status:        run.Status,
			Source:        run.Source,
			StartedAt:     run.StartedAt,
			FinishedAt:    run.FinishedAt,
			TotalReceived: run.TotalReceived,
			CreatedCount:  run.CreatedCount,
			UpdatedCount:  run.UpdatedCount,
			IgnoredCount:  run.IgnoredCount,
			InvalidCount:  run.InvalidCount,
			Message:       run.Message,
		})
	}
	return out, nil
}
