package models

import "time"

// Demo workflow statuses, in pipeline order.
const (
	DemoStatusPending   = "Pending"
	DemoStatusScheduled = "Scheduled"
	DemoStatusCompleted = "Completed"
	DemoStatusCancelled = "Cancelled"
	DemoStatusLead      = "Lead"
	DemoStatusLost      = "Lost"
)

// DemoStatuses lists every valid demo status.
var DemoStatuses = []string{
	DemoStatusPending,
	DemoStatusScheduled,
	DemoStatusCompleted,
	DemoStatusCancelled,
	DemoStatusLead,
	DemoStatusLost,
}

// Demo is a demo-request submission tracked through the status workflow.
type Demo struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Company   *string   `json:"company"`
	DemoDate  string    `json:"demo_date"`
	Service   *string   `json:"service"`
	Notes     *string   `json:"notes"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// RecordID implements view.Record.
func (d *Demo) RecordID() string { return d.ID }

// RecordStatus implements view.Record.
func (d *Demo) RecordStatus() string {
	if d.Status == "" {
		return DemoStatusPending
	}
	return d.Status
}

// SetRecordStatus implements view.Record.
func (d *Demo) SetRecordStatus(status string) { d.Status = status }
