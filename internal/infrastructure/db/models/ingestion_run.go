package models

import "time"

type IngestionRun struct {
	ID            string `gorm:"type:uuid;primaryKey"`
	RunType       string `gorm:"size:20;not null;index"`
	Status        string `gorm:"size:20;not null;index"`
	Source        string `gorm:"size:50;not null"`
	StartedAt     time.Time
	FinishedAt    *time.Time
	TotalReceived int    `gorm:"not null;default:0"`
	CreatedCount  int    `gorm:"not null;default:0"`
	UpdatedCount  int    `gorm:"not null;default:0"`
	IgnoredCount  int    `gorm:"not null;default:0"`
	InvalidCount  int    `gorm:"not null;default:0"`
	Message       string `gorm:"type:text"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (IngestionRun) TableName() string {
	return "ingestion_runs"
}
