package lead

import "errors"

var (
	ErrEmptyBatch     = errors.New("batch has no rows")
	ErrIngestRows     = errors.New("failed to ingest rows")
	ErrInvalidLeadID  = errors.New("invalid lead id")
	ErrLeadNotFound   = errors.New("lead not found")
	ErrGetLead        = errors.New("failed to get lead")
	ErrListLeads      = errors.New("failed to list leads")
	ErrToggleBlock    = errors.New("failed to toggle phone block")
	ErrListRuns       = errors.New("failed to list ingestion runs")
)
