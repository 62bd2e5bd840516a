package projects

import "time"

// ProjectStatus enumerates project lifecycle states.
type ProjectStatus string

const (
	StatusActive   ProjectStatus = "ACTIVE"
	StatusOnHold   ProjectStatus = "ON_HOLD"
	StatusComplete ProjectStatus = "COMPLETE"
)

// Project is the job site estimates and invoices hang off.
type Project struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Client      string        `json:"client"`
	SiteAddress string        `json:"site_address"`
	Status      ProjectStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
