package models

import "time"

// ActivityItem is one entry in the status-change audit feed.
type ActivityItem struct {
	ID         string    `json:"id"`
	EntityType string    `json:"entity_type"` // "contact" or "demo"
	EntityID   string    `json:"entity_id"`
	OldStatus  *string   `json:"old_status"`
	NewStatus  string    `json:"new_status"`
	UpdatedBy  *string   `json:"updated_by"`
	UpdatedAt  time.Time `json:"updated_at"`
	FullName   string    `json:"full_name,omitempty"`
}

// Admin is the authenticated dashboard user returned by the login endpoint.
type Admin struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}
