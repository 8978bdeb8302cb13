package models

const (
	EventResourceCreated = "RESOURCE_CREATED"
	EventResourceUpdated = "RESOURCE_UPDATED"
	EventResourceDeleted = "RESOURCE_DELETED"
)

// ResourceEvent is pushed to live feed subscribers after a catalog change.
type ResourceEvent struct {
	Type  string `json:"type"`
	ID    int64  `json:"id"`
	Title string `json:"title,omitempty"`
}
