package model

import "time"

// Repository describes the GitHub repository a project is bound to.
type Repository struct {
	FullName      string `json:"full_name"`
	URL           string `json:"url"`
	DefaultBranch string `json:"default_branch"`
}

type Project struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Repository  Repository `json:"repository"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Filled by materialization, never persisted on the project blob itself.
	Requirements  []Requirement  `json:"requirements"`
	Notifications []Notification `json:"notifications"`
}
