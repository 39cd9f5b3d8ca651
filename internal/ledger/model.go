package ledger

import "time"

// ConversionEvent is one billable line in the append-only usage ledger.
// Events are never updated or deleted after insertion.
type ConversionEvent struct {
	EventID     string    `json:"eventId"`
	CVID        string    `json:"cvId"`
	SourceHash  string    `json:"sourceHash"`
	FileName    string    `json:"fileName"`
	ConvertedAt time.Time `json:"convertedAt"`
}

// PeriodSummary aggregates events per calendar month for the billing view.
type PeriodSummary struct {
	YearMonth string `json:"yearMonth"`
	Count     int    `json:"count"`
	Status    string `json:"status"`
}

// PeriodStatusOpen marks a month that has not been invoiced yet. The ledger
// only derives summaries; invoicing state beyond "open" lives elsewhere.
const PeriodStatusOpen = "OPEN"
