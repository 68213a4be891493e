package synclog

import (
	"time"

	"github.com/feesync/feesync/internal/types"
)

// SyncLog records one run of the provider sync
type SyncLog struct {
	ID         string             `bson:"id" json:"id"`
	Trigger    types.SyncTrigger  `bson:"trigger" json:"trigger"`
	Strategy   types.SyncStrategy `bson:"strategy" json:"strategy"`
	Status     types.SyncStatus   `bson:"status" json:"status"`
	Stage      types.SyncStage    `bson:"stage" json:"stage"`
	Customers  int                `bson:"customers" json:"customers"`
	Invoices   int                `bson:"invoices" json:"invoices"`
	Payments   int                `bson:"payments" json:"payments"`
	Months     int                `bson:"months" json:"months"`
	Error      string             `bson:"error,omitempty" json:"error,omitempty"`
	Actor      string             `bson:"actor" json:"actor"`
	StartedAt  time.Time          `bson:"started_at" json:"started_at"`
	FinishedAt *time.Time         `bson:"finished_at,omitempty" json:"finished_at,omitempty"`
}

func (l *SyncLog) Duration() time.Duration {
	if l.FinishedAt == nil {
		return 0
	}
	return l.FinishedAt.Sub(l.StartedAt)
}
