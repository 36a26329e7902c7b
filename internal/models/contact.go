package models

import "time"

// Contact workflow statuses, in pipeline order.
const (
	ContactStatusPending    = "Pending"
	ContactStatusProcessing = "Processing"
	ContactStatusContacted  = "Contacted"
	ContactStatusQualified  = "Qualified"
	ContactStatusLead       = "Lead"
	ContactStatusLost       = "Lost"
)

// ContactStatuses lists every valid contact status.
var ContactStatuses = []string{
	ContactStatusPending,
	ContactStatusProcessing,
	ContactStatusContacted,
	ContactStatusQualified,
	ContactStatusLead,
	ContactStatusLost,
}

// Contact is a contact-form submission tracked through the status workflow.
// IDs are assigned by the server of record and never change.
type Contact struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	Company   *string   `json:"company"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// RecordID implements view.Record.
func (c *Contact) RecordID() string { return c.ID }

// RecordStatus implements view.Record. An empty status reads as Pending,
// matching how the backend treats unset statuses.
func (c *Contact) RecordStatus() string {
	if c.Status == "" {
		return ContactStatusPending
	}
	return c.Status
}

// SetRecordStatus implements view.Record.
func (c *Contact) SetRecordStatus(status string) { c.Status = status }
