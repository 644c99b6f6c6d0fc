// Package domain holds the MailFlow value types: contacts, templates, SMTP
// settings, campaign log entries and run snapshots.
//
// Nothing here talks to storage or HTTP and nothing imports another
// internal package. JSON tags match the documents kept in the key-value
// store, so renaming one is a data migration.
package domain
