package domain

import "time"

// EmailTemplate is a reusable subject + HTML body pair.
type EmailTemplate struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Subject      string    `json:"subject"`
	HTMLContent  string    `json:"htmlContent"`
	LastModified time.Time `json:"lastModified"`
}
