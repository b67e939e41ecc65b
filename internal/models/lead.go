package models

import "time"

// Lead states
const (
	LeadStatePending    = "PENDING"
	LeadStateReachedOut = "REACHED_OUT"
)

// Lead represents a prospective client submission
type Lead struct {
	ID         int64     `json:"id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Email      string    `json:"email"`
	ResumePath string    `json:"resume_path"`
	State      string    `json:"state"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// LeadUpdate carries the fields of a partial update; nil means "leave as is"
type LeadUpdate struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	State     *string `json:"state"`
}

// LeadPage is one cursor-based page of leads
type LeadPage struct {
	Items   []Lead `json:"items"`
	Total   int64  `json:"total"`
	HasMore bool   `json:"has_more"`
	LastID  *int64 `json:"last_id"`
}
