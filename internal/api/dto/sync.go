package dto

import (
	"time"

	"github.com/feesync/feesync/internal/domain/synclog"
	"github.com/feesync/feesync/internal/types"
)

// SyncResponse summarises a completed provider sync
type SyncResponse struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message"`
	Customers  int                `json:"customers"`
	Invoices   int                `json:"invoices"`
	Payments   int                `json:"payments"`
	Months     int                `json:"months"`
	Removed    int                `json:"removed"`
	Strategy   types.SyncStrategy `json:"strategy"`
	Trigger    types.SyncTrigger  `json:"trigger"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt time.Time          `json:"finished_at"`
	DurationMs int64              `json:"duration_ms"`
	SyncLogID  string             `json:"sync_log_id"`
}

type SyncLogResponse struct {
	*synclog.SyncLog
	DurationMs int64 `json:"duration_ms"`
}

func NewSyncLogResponse(l *synclog.SyncLog) *SyncLogResponse {
	return &SyncLogResponse{SyncLog: l, DurationMs: l.Duration().Milliseconds()}
}

type ListSyncLogsResponse = types.ListResponse[*SyncLogResponse]
