package models

import "time"

// Resource is a catalog entry. Description and Link are empty when NULL.
type Resource struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Link        string    `json:"link"`
	CreatedBy   *int64    `json:"-"`
	CreatedAt   time.Time `json:"-"`
}

// ResourceDetail is a resource joined with its author's username.
// Author is empty when the creator is NULL or no longer exists.
type ResourceDetail struct {
	Resource
	Author string
}

// ResourceInput carries the editable fields of a resource.
type ResourceInput struct {
	Title       string
	Type        string
	Description string
	Link        string
}
