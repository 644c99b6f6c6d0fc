package domain

import (
	"strings"
	"time"
)

// ContactStatus enumerates the states a contact can be in.
type ContactStatus string

const (
	ContactActive       ContactStatus = "active"
	ContactBounced      ContactStatus = "bounced"
	ContactUnsubscribed ContactStatus = "unsubscribed"
)

// Contact represents a single email recipient in the address book.
type Contact struct {
	ID      string        `json:"id"`
	Email   string        `json:"email"`
	Name    string        `json:"name,omitempty"`
	Company string        `json:"company,omitempty"`
	Status  ContactStatus `json:"status"`
	AddedAt time.Time     `json:"addedAt"`
}

// HasAddress reports whether the email looks like an address. Import only
// requires an "@"; anything stricter is left to the sending side.
func (c *Contact) HasAddress() bool {
	return strings.Contains(c.Email, "@")
}
