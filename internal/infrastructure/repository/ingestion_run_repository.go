package repository

import (
	"context"
	"fmt"
	"time"

	domain "github.com/gattaran/lead-intake/internal/domain/lead"
	"github.com/gattaran/lead-intake/internal/infrastructure/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IngestionRunRepository struct {
	db *gorm.DB
}

func NewIngestionRunRepository(db *gorm.DB) *IngestionRunRepository {
	return &IngestionRunRepository{db: db}
}

func (r *IngestionRunRepository) Start(ctx context.Context, runType, source string) (string, error) {
	run := models.IngestionRun{
		ID:        uuid.NewString(),
		RunType:   runType,
		Status:    domain.RunStatusRunning,
		Source:    source,
		StartedAt: time.Now(),
	}

	if err := r.db.WithContext(ctx).Create(&run).Error; err != nil {
		return "", fmt.Errorf("create ingestion run: %w", err)
	}
	return run.ID, nil
}

func (r *IngestionRunRepository) FinishSuccess(ctx context.Context, runID string, result domain.UpsertResult, message string) error {
	now := time.Now()
	err := r.db.WithContext(ctx).
		Model(&models.IngestionRun{}).
		Where("id = ?", runID).
		Updates(map[string]any{
			"status":         domain.RunStatusSuccess,
			"finished_at":    &now,
			"total_received": result.Processed,
			"created_count":  result.Created,
			"updated_count":  result.Updated,
			"ignored_count":  result.Ignored,
			"invalid_count":  result.Invalid,
			"message":        message,
		}).Error
	if err != nil {
		return fmt.Errorf("finish ingestion run %s: %w", runID, err)
	}
	return nil
}

func (r *IngestionRunRepository) FinishError(ctx context.Context, runID string, message string) error {
	now := time.Now()
	err := r.db.WithContext(ctx).
		Model(&models.IngestionRun{}).
		Where("id = ?", runID).
		Updates(map[string]any{
			"status":      domain.RunStatusError,
			"finished_at": &now,
			"message":     message,
		}).Error
	if err != nil {
		return fmt.Errorf("fail ingestion run %s: %w", runID, err)
	}
	return nil
}

func (r *IngestionRunRepository) ListRecent(ctx context.Context, limit int) ([]domain.IngestionRun, error) {
	var rows []models.IngestionRun
	err := r.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list ingestion runs: %w", err)
	}

	runs := make([]domain.IngestionRun, 0, len(rows))
	for _, row := range rows {
		runs = append(runs, domain.IngestionRun{
			ID:            row.ID,
			RunType:       row.RunType,
			Status:        row.Status,
			Source:        row.Source,
			StartedAt:     row.StartedAt,
			FinishedAt:    row.FinishedAt,
			TotalReceived: row.TotalReceived,
			CreatedCount:  row.CreatedCount,
			UpdatedCount:  row.UpdatedCount,
			IgnoredCount:  row.IgnoredCount,
			InvalidCount:  row.InvalidCount,
			Message:       row.Message,
		})
	}
	return runs, nil
}
