package models

import "encoding/json"

// Event kinds emitted by the notification server. The names double as
// websocket frame tags and redis pub/sub channel names.
const (
	EventNewContact           = "new_contact"
	EventNewDemo              = "new_demo"
	EventContactStatusUpdated = "contact_status_updated"
	EventDemoStatusUpdated    = "demo_status_updated"
)

// EventKinds lists every event kind the channel subscribes to.
var EventKinds = []string{
	EventNewContact,
	EventNewDemo,
	EventContactStatusUpdated,
	EventDemoStatusUpdated,
}

// EventEnvelope is the wire framing for a pushed event. New-submission
// events carry the full record; status events carry at least id and status.
type EventEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}
