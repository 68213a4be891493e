package types

// SyncStrategy is how fetched provider data is written to the mirror
type SyncStrategy string

const (
	// SyncStrategyReplace deletes every document then inserts the fetched set
	SyncStrategyReplace SyncStrategy = "replace"
	// SyncStrategyUpsert upserts by natural key then removes keys the provider no longer returns
	SyncStrategyUpsert SyncStrategy = "upsert"
)

func (s SyncStrategy) IsValid() bool {
	return s == SyncStrategyReplace || s == SyncStrategyUpsert
}

type SyncTrigger string

const (
	SyncTriggerManual    SyncTrigger = "manual"
	SyncTriggerScheduled SyncTrigger = "scheduled"
)

type SyncStatus string

const (
	SyncStatusRunning SyncStatus = "running"
	SyncStatusSuccess SyncStatus = "success"
	SyncStatusFailed  SyncStatus = "failed"
)

// SyncStage is the last stage of a run that completed
type SyncStage string

const (
	SyncStageStarted   SyncStage = "started"
	SyncStageCustomers SyncStage = "customers"
	SyncStageInvoices  SyncStage = "invoices"
	SyncStagePayments  SyncStage = "payments"
)

// SyncPaymentMonths is the size of the trailing payment window
const SyncPaymentMonths = 12
